package moderation

import (
	"os"
	"testing"

	"github.com/m5frls/gedanbot/core/logger"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger(nil); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
