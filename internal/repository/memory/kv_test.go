package memory

import (
	"testing"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/repository/kvtest"
)

func TestKV_Contract(t *testing.T) {
	kvtest.Run(t, NewKV())
}

func TestKV_Concurrent(t *testing.T) {
	kvtest.RunConcurrent(t, NewKV(), 50)
}
