package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lycsqq/qpcpp"
)

// bsp is the board-support collaborator for the demo: OnIdle just gives
// up the critical section and yields briefly, standing in for an RTOS's
// "halt the CPU until the next interrupt".
type bsp struct{}

func (bsp) OnStartup() { fmt.Println("dpp: starting 5 philosophers") }
func (bsp) OnCleanup() { fmt.Println("dpp: stopped") }
func (bsp) OnIdle(fw *qf.Framework) {
	fw.ExitIdleCritical()
	time.Sleep(time.Millisecond)
}

func main() {
	logger := qf.NewDefaultLogger(os.Stdout)
	metrics := qf.NewDispatchMetrics()

	fw, err := qf.New(
		qf.WithMaxActive(nPhilo+1),
		qf.WithMaxEPool(1),
		qf.WithMaxTickRate(1),
		qf.WithLogger(logger),
		qf.WithCollaborator(bsp{}),
		qf.WithMetrics(metrics),
		qf.WithKernel(qf.KernelVanilla),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dpp: configure:", err)
		os.Exit(1)
	}

	const blockSize = 8
	const poolCap = 4 * nPhilo
	if err := fw.PoolInit(qf.NewArena(blockSize, poolCap), blockSize); err != nil {
		fmt.Fprintln(os.Stderr, "dpp: pool init:", err)
		os.Exit(1)
	}

	table := newTable(fw)
	var philos [nPhilo]*Philo
	for i := 0; i < nPhilo; i++ {
		philos[i] = newPhilo(fw, uint8(i), table.ao)
	}
	table.bind(philos)

	stopTicker := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second / ticksPerSec)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fw.TickX(0)
			case <-stopTicker:
				return
			}
		}
	}()

	go func() {
		time.Sleep(10 * time.Second)
		close(stopTicker)
		fw.Stop()
	}()

	code, err := fw.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "dpp: run:", err)
		os.Exit(code)
	}

	fmt.Printf("dpp: %d RTC steps, p50=%s p99=%s max=%s\n",
		metrics.Count(), metrics.P50(), metrics.P99(), metrics.Max())
}
