// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package eventstream_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/ledgercore/eventstream"
)

func TestSubscribeReceivesPublishedValue(t *testing.T) {
	s := eventstream.New[int](4, nil)
	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	s.Publish(7)

	select {
	case v := <-ch:
		require.Equal(t, 7, v)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published value")
	}
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	s := eventstream.New[string](4, nil)
	chA, unsubA := s.Subscribe()
	defer unsubA()
	chB, unsubB := s.Subscribe()
	defer unsubB()

	s.Publish("hello")

	require.Equal(t, "hello", <-chA)
	require.Equal(t, "hello", <-chB)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	s := eventstream.New[int](4, nil)
	ch, unsubscribe := s.Subscribe()
	unsubscribe()

	_, ok := <-ch
	require.False(t, ok)
	require.Equal(t, 0, s.SubscriberCount())
}

func TestPublishDropsOldestWhenSubscriberFull(t *testing.T) {
	var dropped []int
	s := eventstream.New[int](2, func(v int) { dropped = append(dropped, v) })
	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	s.Publish(1)
	s.Publish(2)
	s.Publish(3)

	require.Equal(t, []int{1}, dropped)
	require.Equal(t, 2, <-ch)
	require.Equal(t, 3, <-ch)
}
