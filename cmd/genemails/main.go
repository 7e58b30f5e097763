package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"ordintake/internal/catalog"
)

func main() {
	var count int
	var outputFile string
	var catalogPath string
	flag.IntVar(&count, "count", 100, "number of emails to generate")
	flag.StringVar(&outputFile, "output", "intake.emails.raw.jsonl", "output file")
	flag.StringVar(&catalogPath, "catalog", "", "optional catalog csv; product names are sampled from it")
	flag.Parse()

	products := []string{"Office Chair MARKUS 110", "Desk Lamp TERTIAL 203", "Bookcase BILLY 502", "Coffee Table LACK 860", "Bed Frame MALM 140"}
	if catalogPath != "" {
		cat, err := catalog.LoadCSV(catalogPath)
		if err != nil {
			log.Fatalf("load catalog: %v", err)
		}
		products = products[:0]
		for _, e := range cat.Entries() {
			products = append(products, e.ProductName)
		}
	}

	if err := generateEmails(count, outputFile, products); err != nil {
		log.Fatalf("generation failed: %v", err)
	}
}

// generateEmails writes JSONL records {"email": "..."} covering the four
// item surface forms plus occasional urgency, address and signature noise.
func generateEmails(count int, outputFile string, products []string) error {
	file, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	names := []string{"Anna Larsson", "Ben Porter", "Carla Diaz", "David Kim"}
	streets := []string{"12 Alder Road", "90 Birch Avenue", "404 Cedar Lane"}

	rand.Seed(time.Now().UnixNano())
	enc := json.NewEncoder(file)
	for i := 0; i < count; i++ {
		qty := 1 + rand.Intn(9)
		product := products[rand.Intn(len(products))]
		var line string
		switch i % 4 {
		case 0:
			line = fmt.Sprintf("%d x %s", qty, product)
		case 1:
			line = fmt.Sprintf("%s – Qty: %d", product, qty)
		case 2:
			line = fmt.Sprintf("%d units of %s", qty, product)
		default:
			line = fmt.Sprintf("- %d x %s", qty, product)
		}

		body := "Hello,\n\nI would like to place an order:\n" + line + "\n"
		if i%3 == 0 {
			body += "\nShip to: " + streets[rand.Intn(len(streets))] + "\n"
		}
		if i%5 == 0 {
			body += "\nThis is urgent, please prioritize.\n"
		}
		body += "\nThanks,\n" + names[rand.Intn(len(names))] + "\n"

		if err := enc.Encode(map[string]string{"email": body}); err != nil {
			return fmt.Errorf("encode email %d: %w", i+1, err)
		}
	}

	log.Printf("generated %d emails to %s", count, outputFile)
	return nil
}
