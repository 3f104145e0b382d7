package alipay

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"alipaygw/internal/config"
	"alipaygw/internal/provider/base"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

const (
	notifyVerifyService = "notify_verify"
	notifyAck           = "true"

	// NotifyTimeout bounds every confirmation round trip.
	NotifyTimeout = 5 * time.Second
)

// NotifyChecker confirms that a notify_id was issued by the gateway.
type NotifyChecker interface {
	Confirm(ctx context.Context, notifyID string) bool
}

// RemoteNotifyChecker echoes notify_id back to the gateway and requires the
// literal body "true". Every failure answers false.
type RemoteNotifyChecker struct {
	client    *base.HTTPClient
	partnerID string
	timeout   time.Duration
	breaker   *gobreaker.CircuitBreaker
}

// NewRemoteNotifyChecker builds a checker against cfg.GatewayURL.
func NewRemoteNotifyChecker(cfg config.AlipayCfg) *RemoteNotifyChecker {
	client := base.NewHTTPClient("alipay", NotifyTimeout)
	client.SetBaseURL(cfg.GatewayURL)

	return &RemoteNotifyChecker{
		client:    client,
		partnerID: cfg.PartnerID,
		timeout:   NotifyTimeout,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "alipay-notify-verify",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("notify verification breaker changed state")
			},
		}),
	}
}

// Confirm implements NotifyChecker.
func (c *RemoteNotifyChecker) Confirm(ctx context.Context, notifyID string) bool {
	if notifyID == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	form := url.Values{
		KeyService:  {notifyVerifyService},
		KeyPartner:  {c.partnerID},
		KeyNotifyID: {notifyID},
	}

	// An open breaker returns gobreaker.ErrOpenState, which lands in the
	// failure branch like any transport error.
	body, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.client.PostForm(ctx, "", form)
		if err != nil {
			return nil, err
		}
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("notify_verify returned status %d", resp.StatusCode)
		}
		return resp.String(), nil
	})
	if err != nil {
		log.Warn().
			Err(err).
			Str("notify_id", notifyID).
			Msg("notify verification failed")
		return false
	}

	return body.(string) == notifyAck
}
