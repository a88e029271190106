package memory

import (
	"testing"

	"github.com/gametwin/gaming-twin/server/internal/store"
	"github.com/gametwin/gaming-twin/server/internal/store/storetest"
)

func TestMemoryStore_Compliance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}
