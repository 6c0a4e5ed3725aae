package historyutils

import (
	"fmt"
	"log/slog"

	"github.com/petalhealth/petal/pkg/history"
	"github.com/petalhealth/petal/pkg/history/local"
	"github.com/petalhealth/petal/pkg/history/sqlite"
)

// NewDriver creates a history driver by name.
func NewDriver(name, path string, logger *slog.Logger) (history.Driver, error) {
	switch name {
	case "sqlite":
		logger.Debug("using sqlite history driver", "path", path)
		return sqlite.NewDriver(path)
	case "local", "":
		logger.Debug("using local history driver")
		return local.NewDriver(), nil
	default:
		return nil, fmt.Errorf("unknown history driver: %s", name)
	}
}
