package qf

import "testing"

const sigPublished Signal = SigUserFirst + 10

func TestPubSub_PublishDeliversToAllSubscribers(t *testing.T) {
	fw, err := New(WithMaxActive(4))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := fw.PSInit(uint32(sigPublished) + 1); err != nil {
		t.Fatalf("PSInit: %v", err)
	}

	lo, hi := &countingAO{}, &countingAO{}
	aoLo := fw.Start(1, 4, lo.initial, NewStaticEvent(SigInit))
	aoHi := fw.Start(2, 4, hi.initial, NewStaticEvent(SigInit))
	aoLo.Subscribe(sigPublished)
	aoHi.Subscribe(sigPublished)

	fw.Publish(NewStaticEvent(sigPublished))

	if !popAndDispatch(fw, aoLo) {
		t.Fatal("expected aoLo to have received the published event")
	}
	if lo.last != sigPublished {
		t.Fatalf("aoLo last = %d, want %d", lo.last, sigPublished)
	}
	if !popAndDispatch(fw, aoHi) {
		t.Fatal("expected aoHi to have received the published event")
	}
	if hi.last != sigPublished {
		t.Fatalf("aoHi last = %d, want %d", hi.last, sigPublished)
	}
}

func TestPubSub_UnsubscribeStopsDelivery(t *testing.T) {
	fw, err := New(WithMaxActive(4))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := fw.PSInit(uint32(sigPublished) + 1); err != nil {
		t.Fatalf("PSInit: %v", err)
	}

	c := &countingAO{}
	ao := fw.Start(1, 4, c.initial, NewStaticEvent(SigInit))
	ao.Subscribe(sigPublished)
	ao.Unsubscribe(sigPublished)

	fw.Publish(NewStaticEvent(sigPublished))
	if popAndDispatch(fw, ao) {
		t.Fatal("an unsubscribed AO should not receive the published event")
	}
}

func TestPubSub_UnsubscribeAllRemovesEverySubscription(t *testing.T) {
	fw, err := New(WithMaxActive(4))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	const sig2 = sigPublished + 1
	if err := fw.PSInit(uint32(sig2) + 1); err != nil {
		t.Fatalf("PSInit: %v", err)
	}

	c := &countingAO{}
	ao := fw.Start(1, 4, c.initial, NewStaticEvent(SigInit))
	ao.Subscribe(sigPublished)
	ao.Subscribe(sig2)
	ao.UnsubscribeAll()

	fw.Publish(NewStaticEvent(sigPublished))
	fw.Publish(NewStaticEvent(sig2))
	if popAndDispatch(fw, ao) {
		t.Fatal("UnsubscribeAll should remove every subscription")
	}
}

func TestPubSub_PublishWithDynamicEventRecyclesAfterAllDeliveries(t *testing.T) {
	fw, err := New(WithMaxActive(4), WithMaxEPool(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := fw.PoolInit(make([]byte, 1*8), 8); err != nil {
		t.Fatalf("PoolInit: %v", err)
	}
	if err := fw.PSInit(uint32(sigPublished) + 1); err != nil {
		t.Fatalf("PSInit: %v", err)
	}

	a, b := &countingAO{}, &countingAO{}
	aoA := fw.Start(1, 4, a.initial, NewStaticEvent(SigInit))
	aoB := fw.Start(2, 4, b.initial, NewStaticEvent(SigInit))
	aoA.Subscribe(sigPublished)
	aoB.Subscribe(sigPublished)

	e, ok := fw.NewX(8, 0, sigPublished)
	if !ok {
		t.Fatal("NewX should succeed")
	}
	fw.Publish(e)

	// both subscribers still hold their own reference: the pool should
	// be fully exhausted until both have dispatched (and so GC'd) it.
	if _, ok := fw.NewX(8, 1, sigPublished); ok {
		t.Fatal("pool should be exhausted: two subscriber references are still outstanding")
	}

	popAndDispatch(fw, aoA)
	popAndDispatch(fw, aoB)

	if _, ok := fw.NewX(8, 1, sigPublished); !ok {
		t.Fatal("pool should be free again once every subscriber has dispatched its copy")
	}
}
