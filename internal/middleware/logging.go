package middleware

import (
	"net/http"

	"github.com/2beens/notesweb/pkg"

	log "github.com/sirupsen/logrus"
)

func LogRequest(ipReader *pkg.ClientIPReader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if log.IsLevelEnabled(log.TraceLevel) {
				userIp, err := ipReader.ReadUserIP(r)
				if err != nil {
					userIp = r.RemoteAddr
				}
				log.Tracef(" ====> request [%s] path: [%s] [IP: %s] [UA: %s]", r.Method, r.URL.Path, userIp, r.UserAgent())
			}
			next.ServeHTTP(w, r)
		})
	}
}
