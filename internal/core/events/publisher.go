package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// 领域事件主题（拼在配置的前缀后面）
const (
	InquiryCreated   = "inquiry.created"
	InquiryResponded = "inquiry.responded"
	ProductApproved  = "product.approved"
	SellerApproved   = "seller.approved"
)

// Publisher 尽力而为的事件出口：发布失败只记日志，不影响请求结果
type Publisher interface {
	Publish(event string, payload any)
	Close()
}

type natsPublisher struct {
	nc     *nats.Conn
	prefix string
	log    *zap.Logger
}

func NewNATS(url, prefix string, l *zap.Logger) (Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("b2b-market-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &natsPublisher{nc: nc, prefix: prefix, log: l}, nil
}

func (p *natsPublisher) Publish(event string, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		p.log.Warn("event marshal failed", zap.String("event", event), zap.Error(err))
		return
	}
	subject := p.prefix + "." + event
	if err := p.nc.Publish(subject, b); err != nil {
		p.log.Warn("event publish failed", zap.String("subject", subject), zap.Error(err))
	}
}

func (p *natsPublisher) Close() {
	_ = p.nc.Drain()
}

// Nop 未配置 NATS 时使用
func Nop() Publisher { return nopPublisher{} }

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}
func (nopPublisher) Close()              {}
