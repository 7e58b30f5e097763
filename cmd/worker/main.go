package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"ordintake/internal/catalog"
	"ordintake/internal/extract"
	"ordintake/internal/match"
	"ordintake/internal/metrics"
	"ordintake/internal/model"
	"ordintake/internal/ner"
	"ordintake/internal/orderlog"
	"ordintake/internal/orderstore"
	"ordintake/internal/validate"

	ck "github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Config holds CLI flags for the intake worker.
type Config struct {
	Bootstrap      string
	GroupID        string
	TopicIn        string
	TopicOut       string
	TxID           string
	CatalogPath    string
	MatchThreshold int
	NERMode        string
	PebbleDir      string
	OrderlogDir    string
	TopicOrderlog  string
	OrderlogSink   string // file|kafka|both|none
	MetricsListen  string
}

// inboundEmail is the optional JSON envelope for raw email messages. Plain
// text message values are accepted as well.
type inboundEmail struct {
	Email string `json:"email"`
}

func main() {
	cfg := readFlags()
	if err := run(cfg); err != nil {
		log.Fatalf("worker failed: %v", err)
	}
}

func readFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Bootstrap, "bootstrap", "localhost:19092", "kafka bootstrap servers")
	flag.StringVar(&cfg.GroupID, "group-id", "intake-worker", "consumer group id")
	flag.StringVar(&cfg.TopicIn, "topic-in", "intake.emails.raw", "input topic of raw order emails")
	flag.StringVar(&cfg.TopicOut, "topic-out", "intake.orders.validated", "output topic of validated orders")
	flag.StringVar(&cfg.TxID, "tx-id", "intake-worker-1", "transactional id")
	flag.StringVar(&cfg.CatalogPath, "catalog", "./data/Product_Catalog.csv", "product catalog csv path")
	flag.IntVar(&cfg.MatchThreshold, "match-threshold", validate.DefaultMatchThreshold, "minimum fuzzy match score (0-100)")
	flag.StringVar(&cfg.NERMode, "ner", "none", "named-entity recognizer: rule|none")
	flag.StringVar(&cfg.PebbleDir, "pebble-dir", "./data/orders", "pebble data directory")
	flag.StringVar(&cfg.OrderlogDir, "orderlog-dir", "./data", "order log directory for the file sink")
	flag.StringVar(&cfg.TopicOrderlog, "topic-orderlog", "intake.orders.log", "kafka topic for the order log")
	flag.StringVar(&cfg.OrderlogSink, "orderlog-sink", "file", "order log sink: file|kafka|both|none")
	flag.StringVar(&cfg.MetricsListen, "metrics-listen", ":2112", "metrics listen address, empty to disable")
	flag.Parse()
	return cfg
}

func run(cfg Config) error {
	cat, err := catalog.LoadCSV(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	var recognizer ner.Recognizer
	if cfg.NERMode == "rule" {
		recognizer = ner.Rule{}
	}
	extractor := extract.New(recognizer)
	validator := validate.New(match.NewMatcher(cat), cfg.MatchThreshold)

	store, err := orderstore.NewPebbleStore(cfg.PebbleDir)
	if err != nil {
		return fmt.Errorf("init pebble: %w", err)
	}
	defer store.Close()

	var olog orderlog.Writer
	var sinks []orderlog.Writer
	if cfg.OrderlogSink == "file" || cfg.OrderlogSink == "both" {
		fw, err := orderlog.NewFileWriter(cfg.OrderlogDir, "orders.log.jsonl")
		if err != nil {
			return fmt.Errorf("init order log file: %w", err)
		}
		sinks = append(sinks, fw)
	}
	if cfg.OrderlogSink == "kafka" || cfg.OrderlogSink == "both" {
		sinks = append(sinks, orderlog.NewKafkaWriter(cfg.Bootstrap, cfg.TopicOrderlog))
	}
	if len(sinks) > 0 {
		olog = orderlog.NewMultiWriter(sinks...)
	}

	reg := metrics.NewRegistry()
	if cfg.MetricsListen != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", reg.Handler())
			if err := http.ListenAndServe(cfg.MetricsListen, mux); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	p, err := ck.NewProducer(&ck.ConfigMap{
		"bootstrap.servers":  cfg.Bootstrap,
		"enable.idempotence": true,
		"acks":               "all",
		"transactional.id":   cfg.TxID,
	})
	if err != nil {
		return fmt.Errorf("producer: %w", err)
	}
	defer p.Close()

	c, err := ck.NewConsumer(&ck.ConfigMap{
		"bootstrap.servers":  cfg.Bootstrap,
		"group.id":           cfg.GroupID,
		"enable.auto.commit": false,
		"isolation.level":    "read_committed",
		"auto.offset.reset":  "earliest",
	})
	if err != nil {
		return fmt.Errorf("consumer: %w", err)
	}
	defer c.Close()

	if err := c.SubscribeTopics([]string{cfg.TopicIn}, nil); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	if err := p.InitTransactions(context.TODO()); err != nil {
		return fmt.Errorf("init tx: %w", err)
	}
	log.Printf("worker started bootstrap=%s in=%s out=%s", cfg.Bootstrap, cfg.TopicIn, cfg.TopicOut)

	for {
		if err := p.BeginTransaction(); err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}

		msg, err := c.ReadMessage(10 * time.Second)
		if err != nil {
			_ = p.AbortTransaction(context.TODO())
			continue
		}

		order := process(extractor, validator, msg.Value)
		reg.EmailsParsed.Inc()
		reg.ItemsExtracted.Add(float64(len(order.ValidationResults.Items)))
		reg.ObserveSummary(order.ValidationResults)

		val, err := json.Marshal(&order)
		if err != nil {
			_ = p.AbortTransaction(context.TODO())
			continue
		}
		if err := p.Produce(&ck.Message{
			TopicPartition: ck.TopicPartition{Topic: &cfg.TopicOut, Partition: ck.PartitionAny},
			Key:            []byte(order.OrderDetails.OrderID),
			Value:          val,
		}, nil); err != nil {
			_ = p.AbortTransaction(context.TODO())
			continue
		}

		// SendOffsetsToTransaction binds consumer offsets atomically
		offsets, _ := c.Commit()
		meta, _ := c.GetConsumerGroupMetadata()
		if err := p.SendOffsetsToTransaction(context.Background(), offsets, meta); err != nil {
			_ = p.AbortTransaction(context.TODO())
			continue
		}
		_ = p.Flush(5000)
		if err := p.CommitTransaction(context.TODO()); err != nil {
			_ = p.AbortTransaction(context.TODO())
			continue
		}

		// Side effects after commit: the store is keyed by order ID, so a
		// rare replay just overwrites the same record.
		if err := store.Put(order.OrderDetails.OrderID, order); err != nil {
			log.Printf("store order %s: %v", order.OrderDetails.OrderID, err)
		}
		if olog != nil {
			e := orderlog.Event{
				OrderID:      order.OrderDetails.OrderID,
				CustomerName: order.OrderDetails.CustomerName,
				TotalPrice:   order.ValidationResults.TotalPrice,
				TotalItems:   order.ValidationResults.TotalItems,
				HasIssues:    order.ValidationResults.HasIssues,
				TS:           time.Now().UTC().Unix(),
			}
			if err := olog.Append(e); err != nil {
				log.Printf("order log append %s: %v", e.OrderID, err)
			}
		}
	}
}

// process runs the full pipeline over one raw email message. The value may
// be plain text or a JSON envelope with an "email" field.
func process(e *extract.Extractor, v *validate.Validator, value []byte) model.Order {
	text := string(value)
	var env inboundEmail
	if err := json.Unmarshal(value, &env); err == nil && env.Email != "" {
		text = env.Email
	}
	items, md := e.Extract(text)
	summary := v.Validate(items)
	return model.Order{OrderDetails: md, ValidationResults: summary}
}
