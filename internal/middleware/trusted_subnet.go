package middleware

import (
	"net"
	"net/http"
)

const (
	failedToParseCIDRMessage = "failed to parse trusted subnet address"
	realIPHeader             = "X-Real-IP"
)

// TrustedSubnet возвращает посредника, который пропускает только запросы из доверенной подсети.
// Адрес клиента берется из заголовка X-Real-IP, а при его отсутствии - из адреса соединения.
// Если подсеть не задана, все запросы отклоняются.
func TrustedSubnet(subnet string) func(h http.Handler) http.Handler {
	var (
		ipNet    *net.IPNet
		parseErr error
	)
	if subnet != "" {
		_, ipNet, parseErr = net.ParseCIDR(subnet)
	}

	return func(h http.Handler) http.Handler {
		f := func(w http.ResponseWriter, r *http.Request) {
			if subnet == "" {
				w.WriteHeader(http.StatusForbidden)
				return
			}

			if parseErr != nil {
				http.Error(w, failedToParseCIDRMessage, http.StatusInternalServerError)
				return
			}

			if !ipNet.Contains(clientIP(r)) {
				w.WriteHeader(http.StatusForbidden)
				return
			}

			h.ServeHTTP(w, r)
		}
		return http.HandlerFunc(f)
	}
}

func clientIP(r *http.Request) net.IP {
	if ip := r.Header.Get(realIPHeader); ip != "" {
		return net.ParseIP(ip)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return net.ParseIP(r.RemoteAddr)
	}

	return net.ParseIP(host)
}
