package tuya

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(WithEndpoint(srv.URL + "/%s/homeassistant"))
	return c, srv
}

func TestClient_Login(t *testing.T) {
	var gotForm map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/eu/homeassistant/auth.do", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "tok",
			"refresh_token": "ref",
			"token_type":    "bearer",
			"expires_in":    7200,
		})
	})

	c, _ := testClient(t, mux)
	before := time.Now()
	session, err := c.Login(t.Context(), RegionEU, "alice", "secret1")
	require.NoError(t, err)

	assert.Equal(t, "tok", session.AccessToken)
	assert.Equal(t, "ref", session.RefreshToken)
	assert.Equal(t, "bearer", session.TokenType)
	assert.Equal(t, RegionEU, session.Region)
	assert.WithinDuration(t, before.Add(7200*time.Second), session.ExpiresAt, 2*time.Second)

	assert.Equal(t, "alice", gotForm["userName"])
	assert.Equal(t, "secret1", gotForm["password"])
	assert.Equal(t, "44", gotForm["countryCode"])
	assert.Equal(t, "smart_life", gotForm["bizType"])
	assert.Equal(t, "tuya", gotForm["from"])
}

func TestClient_Login_USCountryCode(t *testing.T) {
	var countryCode string
	mux := http.NewServeMux()
	mux.HandleFunc("/us/homeassistant/auth.do", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		countryCode = r.PostForm.Get("countryCode")
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 60})
	})

	c, _ := testClient(t, mux)
	_, err := c.Login(t.Context(), RegionUS, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "1", countryCode)
}

func TestClient_Login_Rejected(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}},
		{"missing access token", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"expires_in": 7200})
		}},
		{"missing expiry", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"access_token": "tok"})
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/eu/homeassistant/auth.do", tc.handler)
			c, _ := testClient(t, mux)
			_, err := c.Login(t.Context(), RegionEU, "alice", "secret1")
			require.ErrorIs(t, err, ErrRejected)
		})
	}
}

func TestClient_Login_TransportFailure(t *testing.T) {
	c := NewClient(WithEndpoint("http://127.0.0.1:1/%s/homeassistant"))
	_, err := c.Login(t.Context(), RegionEU, "alice", "secret1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRejected)
}

func TestClient_RefreshToken(t *testing.T) {
	nonces := map[string]bool{}
	mux := http.NewServeMux()
	mux.HandleFunc("/eu/homeassistant/access.do", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "ref-1", r.PostForm.Get("refresh_token"))
		nonce := r.PostForm.Get("rand")
		assert.NotEmpty(t, nonce)
		assert.False(t, nonces[nonce], "rand nonce reused across calls")
		nonces[nonce] = true
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "tok-2",
			"refresh_token": "ref-2",
			"token_type":    "bearer",
			"expires_in":    7200,
		})
	})

	c, _ := testClient(t, mux)
	for range 2 {
		session, err := c.RefreshToken(t.Context(), RegionEU, "ref-1")
		require.NoError(t, err)
		assert.Equal(t, "tok-2", session.AccessToken)
		assert.Equal(t, "ref-2", session.RefreshToken)
	}
	assert.Len(t, nonces, 2)
}

func TestClient_ListDevices(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/eu/homeassistant/skill", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		header := req["header"].(map[string]any)
		assert.Equal(t, "Discovery", header["name"])
		assert.Equal(t, "discovery", header["namespace"])
		assert.Equal(t, float64(1), header["payloadVersion"])
		payload := req["payload"].(map[string]any)
		assert.Equal(t, "tok", payload["accessToken"])

		w.Write([]byte(`{
			"header": {"code": "SUCCESS"},
			"payload": {"devices": [
				{"id": "d1", "name": "Desk Lamp", "dev_type": "light",
				 "data": {"online": true, "state": "true", "brightness": "300", "color_temp": 4000}},
				{"id": "d2", "name": "Plug", "dev_type": "switch",
				 "data": {"online": false, "state": false}}
			]}
		}`))
	})

	c, _ := testClient(t, mux)
	devices, err := c.ListDevices(t.Context(), RegionEU, "tok")
	require.NoError(t, err)
	require.Len(t, devices, 2)

	lamp := devices[0]
	assert.Equal(t, "d1", lamp.ID)
	assert.Equal(t, "Desk Lamp", lamp.Name)
	assert.Equal(t, DeviceTypeLight, lamp.Type)
	assert.True(t, lamp.Data.Online)
	require.NotNil(t, lamp.Data.State)
	assert.True(t, *lamp.Data.State)
	require.NotNil(t, lamp.Data.Brightness)
	assert.Equal(t, 300, *lamp.Data.Brightness)
	require.NotNil(t, lamp.Data.ColorTemp)
	assert.Equal(t, 4000, *lamp.Data.ColorTemp)

	plug := devices[1]
	assert.False(t, plug.Data.Online)
	require.NotNil(t, plug.Data.State)
	assert.False(t, *plug.Data.State)
	assert.Nil(t, plug.Data.Brightness)
}

func TestClient_ListDevices_Rejected(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"upstream failure code", `{"header": {"code": "FrequentlyInvoke"}, "payload": {"devices": []}}`},
		{"null device list", `{"header": {"code": "SUCCESS"}, "payload": {}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/eu/homeassistant/skill", func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			})
			c, _ := testClient(t, mux)
			_, err := c.ListDevices(t.Context(), RegionEU, "tok")
			require.ErrorIs(t, err, ErrRejected)
		})
	}
}

func TestClient_SendAction(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/eu/homeassistant/skill", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		header := req["header"].(map[string]any)
		assert.Equal(t, "turnOnOff", header["name"])
		assert.Equal(t, "control", header["namespace"])
		payload := req["payload"].(map[string]any)
		assert.Equal(t, "tok", payload["accessToken"])
		assert.Equal(t, "d1", payload["devId"])
		assert.Equal(t, float64(1), payload["value"])
		w.Write([]byte(`{"header": {"code": "SUCCESS"}}`))
	})

	c, _ := testClient(t, mux)
	err := c.SendAction(t.Context(), RegionEU, "tok", "d1", ActionTurnOnOff, AttributeValue, 1)
	require.NoError(t, err)
}

func TestClient_SendAction_Rejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/eu/homeassistant/skill", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"header": {"code": "TargetOffline"}}`))
	})

	c, _ := testClient(t, mux)
	err := c.SendAction(t.Context(), RegionEU, "tok", "d1", ActionTurnOnOff, AttributeValue, 1)
	require.ErrorIs(t, err, ErrRejected)
}

func TestDeviceData_Apply(t *testing.T) {
	on := true
	brightness := 300
	data := DeviceData{Online: false, State: boolPtr(false), Brightness: &brightness}

	data.Apply(DevicePatch{Online: &on, State: &on})

	assert.True(t, data.Online)
	assert.True(t, *data.State)
	// Unspecified attributes stay untouched.
	require.NotNil(t, data.Brightness)
	assert.Equal(t, 300, *data.Brightness)

	// The merged value must not alias the patch.
	on = false
	assert.True(t, *data.State)
}

func TestDeviceClone_SharesNoPointers(t *testing.T) {
	brightness := 300
	d := Device{
		ID:   "d1",
		Data: DeviceData{Online: true, State: boolPtr(false), Brightness: &brightness},
	}

	c := d.Clone()
	*c.Data.State = true
	*c.Data.Brightness = 999

	assert.False(t, *d.Data.State)
	assert.Equal(t, 300, *d.Data.Brightness)
	assert.Nil(t, c.Data.ColorTemp)
}

func boolPtr(b bool) *bool { return &b }
