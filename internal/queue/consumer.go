package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartScheduleConsumer connects to RabbitMQ, declares the
// schedule.published queue (durable), and starts consuming messages. Each
// message is appended to logs/schedule.log in a single-line,
// human-friendly format; the notification service tails that file today
// and will move to consuming the queue directly. The function runs a
// reconnect loop: it keeps running and logs any processing errors while
// rejecting the offending message so the server continues operating.
func StartScheduleConsumer() error {
	url := brokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("schedule-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("schedule-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("schedule-consumer: set QoS failed: %v", err)
	}

	_, err = ch.QueueDeclare(scheduleQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(scheduleQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			log.Printf("schedule-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte) error {
	var ev SchedulePublishedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "schedule.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	users := "[]"
	if len(ev.AssignedUserIDs) > 0 {
		ids := make([]string, len(ev.AssignedUserIDs))
		for i, id := range ev.AssignedUserIDs {
			ids[i] = strconv.FormatUint(id, 10)
		}
		users = fmt.Sprintf("[%s]", strings.Join(ids, ","))
	}

	line := fmt.Sprintf("[%s] Schedule published | batch_id=%d | semester_id=%d | semester=\"%s\" | published_by=%d | members=%s\n",
		ev.PublishedAt, ev.BatchID, ev.SemesterID, ev.SemesterName, ev.PublishedBy, users)

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
