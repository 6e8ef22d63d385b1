// Command benchmark builds the server, points the default providers at an
// in-process vendor mock and drives /generate with vegeta.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nulzo/prism-fanout/internal/cli"
	vegeta "github.com/tsenart/vegeta/v12/lib"
)

const (
	mockPort = 9091
	appPort  = 8081
)

var toggledIDs = []string{"gpt4o", "gemini", "claude", "commandr"}

type options struct {
	duration time.Duration
	rate     int
	latency  time.Duration
	failRate int
	timeout  time.Duration
	chaos    bool
}

func main() {
	var opts options
	flag.DurationVar(&opts.duration, "duration", 10*time.Second, "Duration of the attack")
	flag.IntVar(&opts.rate, "rate", 50, "Requests per second")
	flag.DurationVar(&opts.latency, "latency", 50*time.Millisecond, "Simulated vendor latency")
	flag.IntVar(&opts.failRate, "fail", 0, "Percentage of vendor calls answered with a 500")
	flag.DurationVar(&opts.timeout, "provider-timeout", 5*time.Second, "Per-provider deadline given to the server")
	flag.BoolVar(&opts.chaos, "chaos", false, "Abandon extra requests mid-flight")
	flag.Parse()

	mock := &vendorMock{latency: opts.latency, failRate: opts.failRate}
	go mock.serve(mockPort)

	stop := startServer(opts)
	defer stop()

	done := make(chan struct{})
	peak := &resourcePeak{}
	go peak.watch(serverPID, done)

	if opts.chaos {
		go abandonRequests(generateURL(), chaosWorkers(opts.rate), done)
	}

	fmt.Printf("%s fan-out to %d providers: %s at %d req/s, vendor latency %s, fail %d%%\n",
		cli.Stylize("bench", cli.BoldCode), len(toggledIDs), opts.duration, opts.rate, opts.latency, opts.failRate)

	metrics, tally := attack(opts)
	close(done)

	report(metrics, tally, peak, mock)
	_ = os.Remove("bench.db")
}

var serverPID int

func generateURL() string {
	return fmt.Sprintf("http://localhost:%d/generate", appPort)
}

func startServer(opts options) func() {
	fmt.Println("Building server...")
	build := exec.Command("go", "build", "-o", "bin/server", "./cmd/server")
	build.Stdout, build.Stderr = os.Stdout, os.Stderr
	if err := build.Run(); err != nil {
		log.Fatalf("build failed: %v", err)
	}

	configFile := "bench_config.yaml"
	if err := os.WriteFile(configFile, []byte(benchConfig(opts.timeout)), 0o644); err != nil {
		log.Fatalf("write config: %v", err)
	}

	logFile, err := os.Create("bench_server.log")
	if err != nil {
		log.Fatalf("create log: %v", err)
	}

	cmd := exec.Command("./bin/server")
	cmd.Env = append(os.Environ(),
		"CONFIG_FILE="+configFile,
		"SERVER_PORT="+strconv.Itoa(appPort),
		"LOG_LEVEL=error",
	)
	cmd.Stdout, cmd.Stderr = logFile, logFile
	if err := cmd.Start(); err != nil {
		log.Fatalf("start server: %v", err)
	}
	serverPID = cmd.Process.Pid

	if !waitHealthy(fmt.Sprintf("http://localhost:%d/health", appPort), 10*time.Second) {
		_ = cmd.Process.Kill()
		log.Fatal("server did not become healthy")
	}

	return func() {
		_ = cmd.Process.Kill()
		_ = logFile.Close()
		_ = os.Remove(configFile)
	}
}

// providerTally counts, per provider id, how results came back.
type providerTally struct {
	mu     sync.Mutex
	text   map[string]int
	errors map[string]int
	absent map[string]int
}

func newTally() *providerTally {
	return &providerTally{text: map[string]int{}, errors: map[string]int{}, absent: map[string]int{}}
}

func (t *providerTally) add(body []byte) {
	var resp struct {
		Results map[string]string `json:"results"`
	}
	if json.Unmarshal(body, &resp) != nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range toggledIDs {
		v, ok := resp.Results[id]
		switch {
		case !ok:
			t.absent[id]++
		case strings.HasPrefix(v, "Error: "):
			t.errors[id]++
		default:
			t.text[id]++
		}
	}
}

func attack(opts options) (*vegeta.Metrics, *providerTally) {
	toggles := make(map[string]bool, len(toggledIDs))
	for _, id := range toggledIDs {
		toggles[id] = true
	}
	body, _ := json.Marshal(map[string]any{"prompt": "Hello", "toggles": toggles})

	targeter := vegeta.NewStaticTargeter(vegeta.Target{
		Method: http.MethodPost,
		URL:    generateURL(),
		Body:   body,
		Header: http.Header{"Content-Type": []string{"application/json"}},
	})

	attacker := vegeta.NewAttacker(vegeta.KeepAlive(true), vegeta.Timeout(opts.timeout+5*time.Second))
	metrics := &vegeta.Metrics{}
	tally := newTally()

	for res := range attacker.Attack(targeter, vegeta.Rate{Freq: opts.rate, Per: time.Second}, opts.duration, "fanout") {
		metrics.Add(res)
		if res.Code == http.StatusOK {
			tally.add(res.Body)
		}
	}
	metrics.Close()
	return metrics, tally
}

func report(m *vegeta.Metrics, t *providerTally, peak *resourcePeak, mock *vendorMock) {
	rule := strings.Repeat("-", 50)
	fmt.Println(rule)
	fmt.Printf("%-14s %s\n", "p50:", m.Latencies.P50)
	fmt.Printf("%-14s %s\n", "p99:", m.Latencies.P99)
	fmt.Printf("%-14s %s\n", "max:", m.Latencies.Max)
	fmt.Printf("%-14s %.2f%%\n", "success:", m.Success*100)
	fmt.Printf("%-14s %.2f req/s\n", "throughput:", m.Throughput)
	fmt.Printf("%-14s %d (%d failed)\n", "vendor calls:", mock.hits.Load(), mock.failures.Load())
	fmt.Printf("%-14s %.1f MB rss, %.1f%% cpu\n", "server peak:", peak.rssMB, peak.cpu)
	fmt.Println(rule)

	fmt.Printf("%-10s %8s %8s %8s\n", "provider", "text", "error", "absent")
	ids := append([]string(nil), toggledIDs...)
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Printf("%-10s %8d %8d %8d\n", id, t.text[id], t.errors[id], t.absent[id])
	}

	if len(m.Errors) > 0 {
		fmt.Println(cli.Stylize("attack errors (first 5):", cli.Red))
		for i, e := range m.Errors {
			if i == 5 {
				break
			}
			fmt.Println("  " + e)
		}
	}
}

func chaosWorkers(rate int) int {
	return min(max(rate/10, 5), 50)
}

// abandonRequests fires /generate calls that the client drops after 1-200ms,
// so the server has to cancel in-flight provider calls.
func abandonRequests(url string, workers int, done <-chan struct{}) {
	fmt.Printf("chaos: %d workers abandoning requests after 1-200ms\n", workers)
	payload := fmt.Sprintf(`{"prompt":"abandoned","toggles":{"%s":true}}`, strings.Join(toggledIDs, `":true,"`))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				ctx, cancel := context.WithTimeout(context.Background(), time.Duration(rand.Intn(200)+1)*time.Millisecond)
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(payload))
				req.Header.Set("Content-Type", "application/json")
				if resp, err := http.DefaultClient.Do(req); err == nil {
					_ = resp.Body.Close()
				}
				cancel()
				time.Sleep(time.Duration(rand.Intn(50)) * time.Millisecond)
			}
		}()
	}
	wg.Wait()
}

// resourcePeak samples ps once a second and keeps the maxima.
type resourcePeak struct {
	rssMB float64
	cpu   float64
}

func (p *resourcePeak) watch(pid int, done <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			out, err := exec.Command("ps", "-p", strconv.Itoa(pid), "-o", "rss=,%cpu=").Output()
			if err != nil {
				continue
			}
			fields := strings.Fields(string(out))
			if len(fields) < 2 {
				continue
			}
			rssKB, _ := strconv.ParseFloat(fields[0], 64)
			cpu, _ := strconv.ParseFloat(fields[1], 64)
			p.rssMB = max(p.rssMB, rssKB/1024)
			p.cpu = max(p.cpu, cpu)
		}
	}
}

func waitHealthy(url string, within time.Duration) bool {
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}
		time.Sleep(250 * time.Millisecond)
	}
	return false
}

func benchConfig(timeout time.Duration) string {
	vendors := []struct{ id, typ, cred, path string }{
		{"gpt4o", "openai", "openai", "openai"},
		{"gemini", "google", "gemini", "gemini"},
		{"claude", "anthropic", "anthropic", "anthropic"},
		{"commandr", "cohere", "cohere", "cohere"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "server:\n  port: %d\n  env: production\n", appPort)
	fmt.Fprintf(&b, "gateway:\n  provider_timeout: %s\n", timeout)
	b.WriteString("log:\n  level: error\n  format: json\n")
	b.WriteString("database:\n  enabled: true\n  path: bench.db\n")
	b.WriteString("providers:\n")
	for _, v := range vendors {
		fmt.Fprintf(&b, "  - id: %s\n    type: %s\n    credential: %s\n    api_key: mock-key\n    base_url: http://localhost:%d/%s\n    enabled: true\n",
			v.id, v.typ, v.cred, mockPort, v.path)
	}
	return b.String()
}
