package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

var privateRanges = func() []*net.IPNet {
	var nets []*net.IPNet
	for _, cidr := range []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "fc00::/7"} {
		_, subnet, _ := net.ParseCIDR(cidr)
		nets = append(nets, subnet)
	}
	return nets
}()

// GetRealIP returns the client address recorded in activity logs and used for
// login throttling. X-Real-IP wins when it is public, then the first public
// hop of X-Forwarded-For, then gin's ClientIP.
func GetRealIP(c *gin.Context) string {
	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); isPublicIP(realIP) {
		return realIP
	}

	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		hops := strings.Split(forwarded, ",")
		for _, hop := range hops {
			if ip := strings.TrimSpace(hop); isPublicIP(ip) {
				return ip
			}
		}
		if first := strings.TrimSpace(hops[0]); net.ParseIP(first) != nil {
			return first
		}
	}

	return c.ClientIP()
}

// GetUserAgent extracts the User-Agent header, or "Unknown"
func GetUserAgent(c *gin.Context) string {
	if ua := c.Request.UserAgent(); ua != "" {
		return ua
	}
	return "Unknown"
}

func isPublicIP(s string) bool {
	ip := net.ParseIP(s)
	if ip == nil || ip.IsLoopback() {
		return false
	}
	for _, subnet := range privateRanges {
		if subnet.Contains(ip) {
			return false
		}
	}
	return true
}
