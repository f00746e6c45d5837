package pkg

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPIsLocal(t *testing.T) {
	cases := []struct {
		addr            string
		expectedIsLocal bool
	}{
		{addr: "83.12.53.65:2145", expectedIsLocal: false},
		{addr: "127.23.0.1:35325", expectedIsLocal: false},
		{addr: "127.0.0.1:35325", expectedIsLocal: true},
		{addr: "[::1]:35325", expectedIsLocal: true},
		{addr: "172.20.0.1:60102", expectedIsLocal: true},
		{addr: "172.200.0.1:60096", expectedIsLocal: true},
		{addr: "172.19.0.1:42452", expectedIsLocal: true},
		{addr: "172.0.0.1:42452", expectedIsLocal: true},
		{addr: "83.12.53.65:214", expectedIsLocal: false},
		{addr: "111.12.56.65:8080", expectedIsLocal: false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expectedIsLocal, IPIsLocal(tc.addr), tc.addr)
	}
}

func TestNewClientIPReader(t *testing.T) {
	reader, err := NewClientIPReader([]string{"10.0.0.0/8", " 192.168.1.10 ", "::1"})
	require.NoError(t, err)
	assert.True(t, reader.isTrusted("10.20.30.40"))
	assert.True(t, reader.isTrusted("192.168.1.10"))
	assert.False(t, reader.isTrusted("192.168.1.11"))
	assert.True(t, reader.isTrusted("::1"))
	assert.False(t, reader.isTrusted("not-an-ip"))

	_, err = NewClientIPReader([]string{"10.0.0.0/33"})
	assert.Error(t, err)
	_, err = NewClientIPReader([]string{"proxy.local"})
	assert.EqualError(t, err, "trusted proxy proxy.local is not a valid ip")

	var nilReader *ClientIPReader
	assert.False(t, nilReader.isTrusted("10.0.0.1"))
}

func TestClientIPReader_ReadUserIP(t *testing.T) {
	testCases := []struct {
		name           string
		trustedProxies []string
		realIP         string
		forwardedFor   string
		remoteAddr     string
		expectedIP     string
		expectedError  string
	}{
		{
			name:           "XRealIpFromTrustedProxy",
			trustedProxies: []string{"10.0.0.0/8"},
			realIP:         "83.12.53.65",
			remoteAddr:     "10.0.0.1:4444",
			expectedIP:     "83.12.53.65",
		},
		{
			name:         "XRealIpFromUntrustedPeerIgnored",
			realIP:       "1.2.3.4",
			forwardedFor: "5.6.7.8",
			remoteAddr:   "83.12.53.66:4444",
			expectedIP:   "83.12.53.66",
		},
		{
			name:           "XForwardedForChain",
			trustedProxies: []string{"10.0.0.0/8"},
			forwardedFor:   "83.12.53.65, 10.0.0.2, 10.0.0.3",
			remoteAddr:     "10.0.0.1:4444",
			expectedIP:     "83.12.53.65",
		},
		{
			name:           "XForwardedForForgedPrefixSkipped",
			trustedProxies: []string{"10.0.0.0/8"},
			forwardedFor:   "1.2.3.4, 83.12.53.65, 10.0.0.2",
			remoteAddr:     "10.0.0.1:4444",
			expectedIP:     "83.12.53.65",
		},
		{
			name:           "XForwardedForOnlyProxies",
			trustedProxies: []string{"10.0.0.0/8"},
			forwardedFor:   "10.0.0.5, 10.0.0.2",
			remoteAddr:     "10.0.0.1:4444",
			expectedIP:     "10.0.0.5",
		},
		{
			name:       "RemoteAddrWithPort",
			remoteAddr: "111.12.56.65:8080",
			expectedIP: "111.12.56.65",
		},
		{
			name:       "LocalDevelopment",
			remoteAddr: "127.0.0.1:51234",
			expectedIP: "localhost",
		},
		{
			name:          "Invalid",
			remoteAddr:    "not-an-ip",
			expectedError: "ip addr not-an-ip is invalid",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reader, err := NewClientIPReader(tc.trustedProxies)
			require.NoError(t, err)

			req, err := http.NewRequest(http.MethodGet, "/", nil)
			require.NoError(t, err)
			req.RemoteAddr = tc.remoteAddr
			if tc.realIP != "" {
				req.Header.Set("X-Real-Ip", tc.realIP)
			}
			if tc.forwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tc.forwardedFor)
			}

			ip, err := reader.ReadUserIP(req)
			if tc.expectedError != "" {
				require.EqualError(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedIP, ip)
		})
	}
}

func TestClientIPReader_NilTrustsNoProxy(t *testing.T) {
	var reader *ClientIPReader
	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	req.RemoteAddr = "83.12.53.66:4444"
	req.Header.Set("X-Real-Ip", "1.2.3.4")

	ip, err := reader.ReadUserIP(req)
	require.NoError(t, err)
	assert.Equal(t, "83.12.53.66", ip)
}
