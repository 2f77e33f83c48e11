package middleware

import (
	"net/netip"

	"github.com/gin-gonic/gin"
)

var forwardedHeaders = []string{"X-Forwarded-Proto", "X-Forwarded-Host"}

// TrustedForwarding strips X-Forwarded-Proto and X-Forwarded-Host unless the
// immediate peer falls inside one of trusted.
func TrustedForwarding(trusted []netip.Prefix) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !peerTrusted(c.RemoteIP(), trusted) {
			for _, h := range forwardedHeaders {
				c.Request.Header.Del(h)
			}
		}
		c.Next()
	}
}

func peerTrusted(remoteIP string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(remoteIP)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
