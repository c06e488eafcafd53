package obs

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveQuery(t *testing.T) {
	before := testutil.CollectAndCount(storageQueriesTotal)

	ObserveQuery("user", "create", time.Now(), nil)
	ObserveQuery("user", "create", time.Now(), errors.New("boom"))

	after := testutil.CollectAndCount(storageQueriesTotal)
	if after != before+2 {
		t.Fatalf("expected two new label combinations, got %d -> %d", before, after)
	}

	ok := testutil.ToFloat64(storageQueriesTotal.WithLabelValues("user", "create", "ok"))
	if ok != 1 {
		t.Fatalf("ok counter = %v, want 1", ok)
	}
	failed := testutil.ToFloat64(storageQueriesTotal.WithLabelValues("user", "create", "error"))
	if failed != 1 {
		t.Fatalf("error counter = %v, want 1", failed)
	}
}
