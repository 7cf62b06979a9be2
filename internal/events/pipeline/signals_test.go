package pipeline

import "testing"

func TestExtractSignals(t *testing.T) {
	tests := []struct {
		name         string
		transport    Transport
		payloadAgent string
		want         RequestSignals
	}{
		{
			name:      "socket address only",
			transport: Transport{RemoteAddr: "198.51.100.4", UserAgent: "curl/8.0"},
			want:      RequestSignals{ClientIP: "198.51.100.4", UserAgent: "curl/8.0"},
		},
		{
			name:      "forwarded chain takes first hop",
			transport: Transport{RemoteAddr: "10.0.0.1", ForwardedFor: " 203.0.113.7 , 10.0.0.2, 10.0.0.3"},
			want:      RequestSignals{ClientIP: "203.0.113.7"},
		},
		{
			name:      "single forwarded entry",
			transport: Transport{RemoteAddr: "10.0.0.1", ForwardedFor: "2001:db8::1"},
			want:      RequestSignals{ClientIP: "2001:db8::1"},
		},
		{
			name:         "payload agent wins over header",
			transport:    Transport{RemoteAddr: "10.0.0.1", UserAgent: "server-side-proxy"},
			payloadAgent: "Mozilla/5.0",
			want:         RequestSignals{ClientIP: "10.0.0.1", UserAgent: "Mozilla/5.0"},
		},
		{
			name:      "everything empty",
			transport: Transport{},
			want:      RequestSignals{},
		},
		{
			name:      "forwarded chain with empty first hop",
			transport: Transport{RemoteAddr: "10.0.0.1", ForwardedFor: ", 10.0.0.2"},
			want:      RequestSignals{ClientIP: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractSignals(tt.transport, tt.payloadAgent)
			if got != tt.want {
				t.Errorf("ExtractSignals() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
