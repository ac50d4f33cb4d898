package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// LogStats summarises one day of booking service logs
type LogStats struct {
	BookingsCreated     int
	BookingsCancelled   int
	CouponsRejected     int
	CouponUsages        int
	CouponOverLimit     int
	PaymentsCaptured    int
	DuplicateCaptures   int
	WebhooksRejected    int
	ProviderFailures    int
	RefundsLeftPending  int
	ManualRefundsNeeded int
	RateLimited         int
	TotalErrors         int
	TotalWarnings       int
	ErrorPatterns       map[string]int
}

func newLogStats() *LogStats {
	return &LogStats{ErrorPatterns: make(map[string]int)}
}

var infoMarkers = []struct {
	marker string
	count  func(*LogStats)
}{
	{"Created booking", func(s *LogStats) { s.BookingsCreated++ }},
	{"cancelled by user", func(s *LogStats) { s.BookingsCancelled++ }},
	{"rejected for user", func(s *LogStats) { s.CouponsRejected++ }},
	{"Recorded coupon", func(s *LogStats) { s.CouponUsages++ }},
	{"captured as", func(s *LogStats) { s.PaymentsCaptured++ }},
	{"Duplicate capture", func(s *LogStats) { s.DuplicateCaptures++ }},
}

var errorMarkers = []struct {
	marker string
	count  func(*LogStats)
}{
	{"Rejected webhook delivery", func(s *LogStats) { s.WebhooksRejected++ }},
	{"Provider order creation failed", func(s *LogStats) { s.ProviderFailures++ }},
	{"left PENDING", func(s *LogStats) { s.RefundsLeftPending++ }},
	{"needs manual refund", func(s *LogStats) { s.ManualRefundsNeeded++ }},
	{"over its usage limit", func(s *LogStats) { s.CouponOverLimit++ }},
	{"Rate limit exceeded", func(s *LogStats) { s.RateLimited++ }},
}

// Log lines look like "ERROR: 2026/05/01 10:00:00 file.go:12: message"
var linePrefix = regexp.MustCompile(`^(INFO|WARN|ERROR|DEBUG): \S+ \S+ \S+: `)

// Digits are folded so one message template counts as one pattern
var digits = regexp.MustCompile(`\d+`)

func main() {
	logDir := flag.String("dir", "./logs", "log directory")
	day := flag.String("date", time.Now().Format("2006-01-02"), "day to analyse (YYYY-MM-DD)")
	flag.Parse()

	stats := newLogStats()
	if err := analyzeFile(filepath.Join(*logDir, fmt.Sprintf("info-%s.log", *day)), stats, analyzeInfo); err != nil {
		fmt.Printf("Error reading info log: %v\n", err)
	}
	if err := analyzeFile(filepath.Join(*logDir, fmt.Sprintf("error-%s.log", *day)), stats, analyzeErrors); err != nil {
		fmt.Printf("Error reading error log: %v\n", err)
	}

	printReport(os.Stdout, *day, stats)
}

func analyzeFile(path string, stats *LogStats, analyze func(io.Reader, *LogStats) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return analyze(file, stats)
}

func analyzeInfo(r io.Reader, stats *LogStats) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		for _, m := range infoMarkers {
			if strings.Contains(line, m.marker) {
				m.count(stats)
			}
		}
	}
	return scanner.Err()
}

func analyzeErrors(r io.Reader, stats *LogStats) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "ERROR:"):
			stats.TotalErrors++
		case strings.HasPrefix(line, "WARN:"):
			stats.TotalWarnings++
		default:
			continue
		}

		for _, m := range errorMarkers {
			if strings.Contains(line, m.marker) {
				m.count(stats)
			}
		}
		if msg := linePrefix.ReplaceAllString(line, ""); msg != line {
			stats.ErrorPatterns[digits.ReplaceAllString(msg, "N")]++
		}
	}
	return scanner.Err()
}

func printReport(w io.Writer, day string, stats *LogStats) {
	fmt.Fprintln(w, "\n=== Booking Log Report ===")
	fmt.Fprintln(w, "Day:", day)

	fmt.Fprintln(w, "\n1. Bookings:")
	fmt.Fprintf(w, "   Created: %d\n", stats.BookingsCreated)
	fmt.Fprintf(w, "   Cancelled: %d\n", stats.BookingsCancelled)

	fmt.Fprintln(w, "\n2. Coupons:")
	fmt.Fprintf(w, "   Rejected: %d\n", stats.CouponsRejected)
	fmt.Fprintf(w, "   Usages recorded: %d\n", stats.CouponUsages)
	fmt.Fprintf(w, "   Over usage limit: %d\n", stats.CouponOverLimit)

	fmt.Fprintln(w, "\n3. Payments:")
	fmt.Fprintf(w, "   Captured: %d\n", stats.PaymentsCaptured)
	fmt.Fprintf(w, "   Duplicate deliveries: %d\n", stats.DuplicateCaptures)
	fmt.Fprintf(w, "   Rejected webhooks: %d\n", stats.WebhooksRejected)
	fmt.Fprintf(w, "   Provider failures: %d\n", stats.ProviderFailures)

	fmt.Fprintln(w, "\n4. Needs attention:")
	fmt.Fprintf(w, "   Refunds left pending: %d\n", stats.RefundsLeftPending)
	fmt.Fprintf(w, "   Captures needing manual refund: %d\n", stats.ManualRefundsNeeded)
	fmt.Fprintf(w, "   Rate limited requests: %d\n", stats.RateLimited)

	fmt.Fprintln(w, "\n5. Most common errors:")
	fmt.Fprintf(w, "   Errors: %d, warnings: %d\n", stats.TotalErrors, stats.TotalWarnings)
	for _, p := range topPatterns(stats.ErrorPatterns, 5) {
		fmt.Fprintf(w, "   %s: %d occurrences\n", p.pattern, p.count)
	}
}

type patternCount struct {
	pattern string
	count   int
}

func topPatterns(patterns map[string]int, limit int) []patternCount {
	list := make([]patternCount, 0, len(patterns))
	for p, c := range patterns {
		list = append(list, patternCount{p, c})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count == list[j].count {
			return list[i].pattern < list[j].pattern
		}
		return list[i].count > list[j].count
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list
}
