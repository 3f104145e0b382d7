package postgres

import (
	"context"

	"alipaygw/internal/provider/alipay"
)

// GatewayLog writes inbound and outbound gateway traffic to gateway_logs.
type GatewayLog struct {
	repo    *Repo
	gateway string
}

func NewGatewayLog(repo *Repo, gateway string) *GatewayLog {
	return &GatewayLog{repo: repo, gateway: gateway}
}

func (l *GatewayLog) Record(ctx context.Context, e alipay.AuditEntry) error {
	_, err := l.repo.db.Exec(ctx, `
		INSERT INTO gateway_logs (gateway, context, payload, direction, success)
		VALUES ($1,$2,$3,$4,$5)`,
		l.gateway, e.Context, e.RawPayload, e.Direction, e.Success,
	)
	return err
}
