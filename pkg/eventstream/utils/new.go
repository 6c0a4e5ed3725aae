package eventstreamutils

import (
	"fmt"
	"log/slog"

	"github.com/petalhealth/petal/pkg/eventstream"
	"github.com/petalhealth/petal/pkg/eventstream/kafka"
	"github.com/petalhealth/petal/pkg/eventstream/nop"
)

// NewPublisher creates an eventstream publisher by name.
func NewPublisher(name string, brokers []string, topic string, logger *slog.Logger) (eventstream.Publisher, error) {
	switch name {
	case "kafka":
		logger.Debug("using kafka eventstream publisher", "brokers", brokers, "topic", topic)
		return kafka.NewPublisher(&kafka.Config{
			Brokers: brokers,
			Topic:   topic,
			Logger:  logger,
		})
	case "nop", "":
		logger.Debug("eventstream publishing disabled")
		return nop.NewPublisher(), nil
	default:
		return nil, fmt.Errorf("unknown eventstream publisher: %s", name)
	}
}
