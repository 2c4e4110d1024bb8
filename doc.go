// Package qf implements a real-time active-object framework: hierarchical
// state machines (HSMs) running as active objects (AOs), each with a
// private priority and event queue, communicating only by asynchronous
// event exchange.
//
// # Architecture
//
// A [Framework] owns the registration table, the ready set, the
// publish-subscribe bitset, the event pools and the time-event wheel. Each
// [ActiveObject] pairs a user-supplied [HSM] with a private event queue and
// a unique priority in [1, Config.MaxActive]. Events are allocated from
// fixed-block pool instances ([Framework.NewX]) or declared static, posted
// directly ([ActiveObject.Post], [ActiveObject.PostLIFO]) or broadcast
// ([Framework.Publish]), and dispatched to completion by one of two
// schedulers selected via [WithKernel] at construction time: [KernelVanilla]
// (single cooperative dispatch loop) or [KernelQK] (priority-preemptive, one
// goroutine per AO).
//
// # Concurrency
//
// All shared framework state (ready set, registration table, subscriber
// bitsets, pool free lists, queue counters, the armed-timer list and event
// reference counts) is protected by a single critical section ([critSection]),
// standing in for the interrupt mask of an embedded RTOS kernel. AOs
// never mutate each other's private state outside of it.
//
// # Usage
//
//	fw, _ := qf.New(qf.WithMaxActive(8))
//	fw.PSInit(maxSignal)
//	fw.PoolInit(arena, blockSize)
//	ao := fw.Start(prio, qCap, top, qf.NewStaticEvent(qf.SigInit))
//	code, _ := fw.Run()
//	os.Exit(code)
package qf
