// SPDX-License-Identifier: GPL-3.0-or-later
package bot

import (
	"sync"

	"github.com/mailbutler/go-imap-butler/log"

	"github.com/sirupsen/logrus"
)

const QueueBuffer = 16

// Replier is the outbound half of the chat transport.
type Replier interface {
	Reply(userID int64, reply Reply) error
}

// Dispatcher feeds inbound messages to the butler. A user's messages are
// processed in arrival order on a dedicated worker, so a slow mailbox fetch
// for one user never blocks the others.
type Dispatcher struct {
	butler  *Butler
	replier Replier

	mu     sync.Mutex
	queues map[int64]chan string
	wg     sync.WaitGroup
	quit   chan struct{}

	l *logrus.Logger
}

func NewDispatcher(butler *Butler, replier Replier) *Dispatcher {
	return &Dispatcher{
		butler:  butler,
		replier: replier,
		queues:  map[int64]chan string{},
		quit:    make(chan struct{}),
		l:       log.Logger(log.LOG_BOT),
	}
}

// Dispatch enqueues an inbound message. It blocks only when the user's own
// queue is full.
func (d *Dispatcher) Dispatch(userID int64, text string) {
	d.mu.Lock()
	queue, ok := d.queues[userID]
	if !ok {
		queue = make(chan string, QueueBuffer)
		d.queues[userID] = queue
		d.wg.Add(1)
		go d.worker(userID, queue)
	}
	d.mu.Unlock()

	select {
	case queue <- text:
	case <-d.quit:
	}
}

func (d *Dispatcher) worker(userID int64, queue chan string) {
	defer d.wg.Done()

	for {
		select {
		case <-d.quit:
			return
		case text := <-queue:
			for _, reply := range d.butler.Handle(userID, text) {
				err := d.replier.Reply(userID, reply)
				if err != nil {
					d.l.WithFields(logrus.Fields{"user": userID, "error": err}).Error("Could not deliver reply")
				}
			}
		}
	}
}

// Stop terminates all workers. Messages still queued are dropped.
func (d *Dispatcher) Stop() {
	close(d.quit)
	d.wg.Wait()
}
