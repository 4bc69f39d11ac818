package api

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/jarvisgally/gamecmd/config"
	"github.com/sirupsen/logrus"
	"github.com/yl2chen/cidranger"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// guard admits peers from allowed networks that present the operator token.
// No networks means any peer, no token hash means no token.
type guard struct {
	ranger    cidranger.Ranger
	tokenHash []byte
	log       logrus.FieldLogger
}

func newGuard(cfg config.API, log logrus.FieldLogger) (*guard, error) {
	g := &guard{log: log}
	if len(cfg.AllowedNetworks) > 0 {
		g.ranger = cidranger.NewPCTrieRanger()
		for _, network := range cfg.AllowedNetworks {
			_, n, err := net.ParseCIDR(network)
			if err != nil {
				return nil, fmt.Errorf("invalid allowed network %q: %w", network, err)
			}
			if err := g.ranger.Insert(cidranger.NewBasicRangerEntry(*n)); err != nil {
				return nil, err
			}
		}
	}
	if cfg.TokenHash != "" {
		g.tokenHash = []byte(cfg.TokenHash)
	}
	return g, nil
}

func (g *guard) unary(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if err := g.check(ctx); err != nil {
		g.log.WithField("method", info.FullMethod).Warnf("API: rejected: %v", err)
		return nil, err
	}
	return handler(ctx, req)
}

func (g *guard) check(ctx context.Context) error {
	if g.ranger != nil {
		ip := peerIP(ctx)
		if ip == nil {
			return status.Error(codes.PermissionDenied, "unknown peer address")
		}
		allowed, err := g.ranger.Contains(ip)
		if err != nil || !allowed {
			return status.Errorf(codes.PermissionDenied, "peer %v not allowed", ip)
		}
	}
	if g.tokenHash != nil {
		md, _ := metadata.FromIncomingContext(ctx)
		values := md.Get(authorizationMetadata)
		if len(values) == 0 {
			return status.Error(codes.Unauthenticated, "missing token")
		}
		token := strings.TrimPrefix(values[0], "Bearer ")
		if bcrypt.CompareHashAndPassword(g.tokenHash, []byte(token)) != nil {
			return status.Error(codes.Unauthenticated, "invalid token")
		}
	}
	return nil
}

func peerIP(ctx context.Context) net.IP {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return nil
	}
	if tcp, ok := p.Addr.(*net.TCPAddr); ok {
		return tcp.IP
	}
	host, _, err := net.SplitHostPort(p.Addr.String())
	if err != nil {
		return nil
	}
	return net.ParseIP(host)
}
