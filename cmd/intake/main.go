package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"ordintake/internal/catalog"
	"ordintake/internal/extract"
	"ordintake/internal/match"
	"ordintake/internal/merge"
	"ordintake/internal/metrics"
	"ordintake/internal/model"
	"ordintake/internal/ner"
	"ordintake/internal/orderlog"
	"ordintake/internal/orderstore"
	"ordintake/internal/validate"
)

// Config holds CLI flags for the intake HTTP service.
type Config struct {
	Listen         string
	CatalogPath    string
	MatchThreshold int
	NERMode        string // rule|none
	StoreBackend   string // memory|pebble
	PebbleDir      string
	// Order log sinks
	OrderlogSink   string // file|kafka|both|none
	OrderlogDir    string
	KafkaBootstrap string
	TopicOrderlog  string
}

func main() {
	cfg := readFlags()
	if err := run(cfg); err != nil {
		log.Fatalf("intake failed: %v", err)
	}
}

func readFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Listen, "listen", ":8080", "http listen address")
	flag.StringVar(&cfg.CatalogPath, "catalog", "./data/Product_Catalog.csv", "product catalog csv path")
	flag.IntVar(&cfg.MatchThreshold, "match-threshold", validate.DefaultMatchThreshold, "minimum fuzzy match score (0-100)")
	flag.StringVar(&cfg.NERMode, "ner", "none", "named-entity recognizer: rule|none")
	flag.StringVar(&cfg.StoreBackend, "store", "memory", "order store backend: memory|pebble")
	flag.StringVar(&cfg.PebbleDir, "pebble-dir", "./data/orders", "pebble data directory")
	flag.StringVar(&cfg.OrderlogSink, "orderlog-sink", "file", "order log sink: file|kafka|both|none")
	flag.StringVar(&cfg.OrderlogDir, "orderlog-dir", "./data", "order log directory for the file sink")
	flag.StringVar(&cfg.KafkaBootstrap, "kafka-bootstrap", "", "kafka bootstrap servers, e.g. localhost:9092")
	flag.StringVar(&cfg.TopicOrderlog, "topic-orderlog", "intake.orders.log", "kafka topic for the order log")
	flag.Parse()
	return cfg
}

func run(cfg Config) error {
	cat, err := catalog.LoadCSV(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	log.Printf("loaded catalog with %d products from %s", cat.Len(), cfg.CatalogPath)

	var recognizer ner.Recognizer
	if cfg.NERMode == "rule" {
		recognizer = ner.Rule{}
	}

	var store orderstore.Store
	if cfg.StoreBackend == "pebble" {
		ps, err := orderstore.NewPebbleStore(cfg.PebbleDir)
		if err != nil {
			return fmt.Errorf("init pebble: %w", err)
		}
		defer ps.Close()
		store = ps
	} else {
		store = orderstore.NewInMemoryStore()
	}

	olog, err := buildOrderlog(cfg)
	if err != nil {
		return err
	}

	srv := &server{
		extractor: extract.New(recognizer),
		validator: validate.New(match.NewMatcher(cat), cfg.MatchThreshold),
		store:     store,
		olog:      olog,
		metrics:   metrics.NewRegistry(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleRoot)
	mux.HandleFunc("/parse-email", srv.handleParseEmail)
	mux.HandleFunc("/validate-order", srv.handleValidateOrder)
	mux.HandleFunc("/merge-orders", srv.handleMergeOrders)
	mux.HandleFunc("/orders", srv.handleListOrders)
	mux.HandleFunc("/orders/", srv.handleGetOrder)
	mux.Handle("/metrics", srv.metrics.Handler())

	log.Printf("intake listening on %s (threshold=%d ner=%s store=%s)", cfg.Listen, cfg.MatchThreshold, cfg.NERMode, cfg.StoreBackend)
	return http.ListenAndServe(cfg.Listen, mux)
}

func buildOrderlog(cfg Config) (orderlog.Writer, error) {
	var sinks []orderlog.Writer
	if cfg.OrderlogSink == "file" || cfg.OrderlogSink == "both" {
		fw, err := orderlog.NewFileWriter(cfg.OrderlogDir, "orders.log.jsonl")
		if err != nil {
			return nil, fmt.Errorf("init order log file: %w", err)
		}
		sinks = append(sinks, fw)
	}
	if (cfg.OrderlogSink == "kafka" || cfg.OrderlogSink == "both") && cfg.KafkaBootstrap != "" {
		sinks = append(sinks, orderlog.NewKafkaWriter(cfg.KafkaBootstrap, cfg.TopicOrderlog))
	}
	if len(sinks) == 0 {
		return nil, nil
	}
	return orderlog.NewMultiWriter(sinks...), nil
}

type server struct {
	extractor *extract.Extractor
	validator *validate.Validator
	store     orderstore.Store
	olog      orderlog.Writer
	metrics   *metrics.Registry
}

func (s *server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Smart Order Intake API is running"})
}

// handleParseEmail accepts an email as a multipart "file" field or as the
// raw request body, runs the full extract+validate pipeline and returns the
// order details together with validation results.
func (s *server) handleParseEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	text, err := readEmailBody(r)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	items, md := s.extractor.Extract(text)
	summary := s.validator.Validate(items)
	s.metrics.EmailsParsed.Inc()
	s.metrics.ItemsExtracted.Add(float64(len(items)))
	s.metrics.ObserveSummary(summary)
	s.metrics.ParseLatency.Observe(time.Since(start).Seconds())

	order := model.Order{OrderDetails: md, ValidationResults: summary}
	if err := s.store.Put(md.OrderID, order); err != nil {
		log.Printf("store order %s: %v", md.OrderID, err)
	}
	s.appendLog(order)

	writeJSON(w, http.StatusOK, order)
}

func (s *server) handleValidateOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var items []model.RawLineItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		httpError(w, http.StatusBadRequest, fmt.Sprintf("decode items: %v", err))
		return
	}
	summary := s.validator.Validate(items)
	s.metrics.ObserveSummary(summary)
	writeJSON(w, http.StatusOK, map[string]model.ValidationSummary{"validation_results": summary})
}

func (s *server) handleMergeOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var orders []model.Order
	if err := json.NewDecoder(r.Body).Decode(&orders); err != nil {
		httpError(w, http.StatusBadRequest, fmt.Sprintf("decode orders: %v", err))
		return
	}
	merged := merge.Orders(orders)
	s.metrics.OrdersMerged.Inc()
	writeJSON(w, http.StatusOK, merged)
}

func (s *server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	orders := []model.Order{}
	err := s.store.Range(func(_ string, o model.Order) error {
		orders = append(orders, o)
		return nil
	})
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/orders/")
	if id == "" {
		httpError(w, http.StatusBadRequest, "order id required")
		return
	}
	o, ok := s.store.Get(id)
	if !ok {
		httpError(w, http.StatusNotFound, fmt.Sprintf("order %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *server) appendLog(o model.Order) {
	if s.olog == nil {
		return
	}
	e := orderlog.Event{
		OrderID:      o.OrderDetails.OrderID,
		CustomerName: o.OrderDetails.CustomerName,
		TotalPrice:   o.ValidationResults.TotalPrice,
		TotalItems:   o.ValidationResults.TotalItems,
		HasIssues:    o.ValidationResults.HasIssues,
		TS:           time.Now().UTC().Unix(),
	}
	if err := s.olog.Append(e); err != nil {
		log.Printf("order log append %s: %v", e.OrderID, err)
	}
}

// readEmailBody pulls email text from a multipart "file" field when present,
// otherwise from the raw body. Non-UTF-8 content is rejected.
func readEmailBody(r *http.Request) (string, error) {
	var raw []byte
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		f, _, err := r.FormFile("file")
		if err != nil {
			return "", fmt.Errorf("read upload: %w", err)
		}
		defer f.Close()
		raw, err = io.ReadAll(f)
		if err != nil {
			return "", fmt.Errorf("read upload: %w", err)
		}
	} else {
		var err error
		raw, err = io.ReadAll(r.Body)
		if err != nil {
			return "", fmt.Errorf("read body: %w", err)
		}
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("email content is not valid text")
	}
	return string(raw), nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func httpError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"detail": msg})
}
