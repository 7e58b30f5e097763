package orderstore

import (
	"fmt"
	"sync"
	"testing"

	"ordintake/internal/model"
)

func sampleOrder(id string, total float64) model.Order {
	return model.Order{
		OrderDetails: model.OrderMetadata{OrderID: id, CustomerName: "John Smith", Urgency: model.UrgencyNormal},
		ValidationResults: model.ValidationSummary{
			Items:      []model.ValidatedLineItem{{SKU: "SKU-1", RequestedName: "chair", RequestedQty: 2, Price: total / 2, LineTotal: total, MatchScore: 100, Status: model.StatusValid}},
			TotalPrice: total,
			TotalItems: 2,
		},
	}
}

func TestInMemoryStore_PutGetRange(t *testing.T) {
	s := NewInMemoryStore()

	if _, ok := s.Get("missing"); ok {
		t.Fatalf("empty store should miss")
	}
	o1 := sampleOrder("A-202506051030", 100)
	if err := s.Put(o1.OrderDetails.OrderID, o1); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok := s.Get("A-202506051030")
	if !ok {
		t.Fatalf("missing key")
	}
	if got.ValidationResults.TotalPrice != 100 {
		t.Fatalf("mismatch: %+v", got)
	}

	// same id overwrites
	o2 := sampleOrder("A-202506051030", 50)
	if err := s.Put(o2.OrderDetails.OrderID, o2); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, _ = s.Get("A-202506051030")
	if got.ValidationResults.TotalPrice != 50 {
		t.Fatalf("overwrite failed: %+v", got)
	}

	count := 0
	if err := s.Range(func(id string, o model.Order) error { count++; return nil }); err != nil {
		t.Fatalf("range: %v", err)
	}
	if count != 1 {
		t.Fatalf("range count=%d want=1", count)
	}
}

func TestInMemoryStore_ConcurrentPuts(t *testing.T) {
	s := NewInMemoryStore()
	var wg sync.WaitGroup
	iters := 200

	for g := 0; g < 4; g++ {
		g := g
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iters; i++ {
				id := fmt.Sprintf("G%d-%d", g, i)
				if err := s.Put(id, sampleOrder(id, 10)); err != nil {
					t.Errorf("put err: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	count := 0
	if err := s.Range(func(string, model.Order) error { count++; return nil }); err != nil {
		t.Fatalf("range: %v", err)
	}
	if count != 4*iters {
		t.Fatalf("count=%d want=%d", count, 4*iters)
	}
}
