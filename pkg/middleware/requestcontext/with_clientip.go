package requestcontext

import (
	"context"
	"net"

	"github.com/RishalEP/tenx-blockchain/pkg/logger"
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type clientIPKey struct{}

type WithClientIPConfig struct {
	// TrustedProxiesIP lists the CIDR ranges of every proxy in front of the server.
	// The client IP is the last X-Forwarded-For entry outside these ranges.
	TrustedProxiesIP []string `mapstructure:"trusted_proxies_ip"`

	// TrustedHeader names a header holding the client IP, e.g. X-Real-IP.
	// It takes precedence when it carries a valid IP.
	TrustedHeader string `mapstructure:"trusted_proxies_header"`

	// EnableRejectMalformedRequest answers 403 when a proxied request has no
	// identifiable client IP.
	EnableRejectMalformedRequest bool `mapstructure:"enable_reject_malformed_request"`
}

// WithClientIP stores the client IP, resisting X-Forwarded-For spoofing when
// trusted proxies are configured.
func WithClientIP(config WithClientIPConfig) (Option, error) {
	trusted, err := parseCIDRs(config.TrustedProxiesIP)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return func(ctx context.Context, c *fiber.Ctx) (context.Context, error) {
		if config.TrustedHeader != "" {
			if ip := c.Get(config.TrustedHeader); net.ParseIP(ip) != nil {
				return context.WithValue(ctx, clientIPKey{}, ip), nil
			}
		}

		forwarded := c.IPs()
		if len(forwarded) == 0 {
			return context.WithValue(ctx, clientIPKey{}, c.IP()), nil
		}
		if len(trusted) > 0 {
			for i := len(forwarded) - 1; i >= 0; i-- {
				ip := net.ParseIP(forwarded[i])
				if ip != nil && !lo.SomeBy(trusted, func(n *net.IPNet) bool { return n.Contains(ip) }) {
					return context.WithValue(ctx, clientIPKey{}, forwarded[i]), nil
				}
			}
			return context.WithValue(ctx, clientIPKey{}, forwarded[0]), nil
		}
		if config.EnableRejectMalformedRequest {
			logger.WarnContext(ctx, "rejecting request without identifiable client IP",
				"event", "requestcontext/ip_spoofing_detected",
				"ip", c.IP(),
				"ips", forwarded,
			)
			return nil, rejectError{status: fiber.StatusForbidden, message: "not allowed to access"}
		}
		return context.WithValue(ctx, clientIPKey{}, forwarded[0]), nil
	}, nil
}

// GetClientIP returns the IP stored by [WithClientIP], or "".
func GetClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

func parseCIDRs(ranges []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(ranges))
	for _, r := range ranges {
		_, ipnet, err := net.ParseCIDR(r)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse CIDR %q", r)
		}
		nets = append(nets, ipnet)
	}
	return nets, nil
}
