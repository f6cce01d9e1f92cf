package xcacheconf

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain 检测协程泄漏。
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
