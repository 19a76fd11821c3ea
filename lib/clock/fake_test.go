// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClockNow(t *testing.T) {
	clock := Fake(epoch)
	if got := clock.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}
	clock.Advance(5 * time.Second)
	want := epoch.Add(5 * time.Second)
	if got := clock.Now(); !got.Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeClockSet(t *testing.T) {
	clock := Fake(epoch)
	target := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	clock.Set(target)
	if got := clock.Now(); !got.Equal(target) {
		t.Fatalf("Now() after Set = %v, want %v", got, target)
	}
}

func TestFakeClockConcurrentAdvance(t *testing.T) {
	clock := Fake(epoch)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Advance(time.Second)
			clock.Now()
		}()
	}
	wg.Wait()

	if got, want := clock.Now(), epoch.Add(50*time.Second); !got.Equal(want) {
		t.Fatalf("Now() = %v, want %v", got, want)
	}
}

func TestRealClockAdvances(t *testing.T) {
	clock := Real()
	first := clock.Now()
	if clock.Now().Before(first) {
		t.Fatal("real clock went backwards")
	}
}
