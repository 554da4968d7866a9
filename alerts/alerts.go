package alerts

import (
	"bytes"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

// Notifier posts job failures to a Slack incoming webhook, deduplicating
// repeated errors within a cooldown window. A nil Notifier or an empty
// webhook URL disables alerting.
type Notifier struct {
	webhookURL  string
	environment string
	appName     string

	mutex    sync.Mutex
	alerted  map[string]time.Time // error hash -> last alert time
	cooldown time.Duration

	httpClient *http.Client
}

func NewNotifier(webhookURL, environment, appName string) *Notifier {
	return &Notifier{
		webhookURL:  webhookURL,
		environment: environment,
		appName:     appName,
		alerted:     make(map[string]time.Time),
		cooldown:    10 * time.Minute,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// AlertOnError fires a webhook alert for the error unless the same error
// was already alerted within the cooldown window.
func (n *Notifier) AlertOnError(err error, context string) {
	if n == nil || n.webhookURL == "" || err == nil {
		return
	}
	errorMsg := fmt.Sprintf("%s: %v", context, err)
	hash := fmt.Sprintf("%x", md5.Sum([]byte(errorMsg)))

	n.mutex.Lock()
	if lastAlert, exists := n.alerted[hash]; exists && time.Since(lastAlert) < n.cooldown {
		n.mutex.Unlock()
		return
	}
	n.alerted[hash] = time.Now()
	n.mutex.Unlock()

	go n.send(errorMsg)
}

func (n *Notifier) send(errorMsg string) {
	payload := map[string]any{
		"text": fmt.Sprintf("🚨 [%s] %s error: %s", n.environment, n.appName, errorMsg),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}
	resp, err := n.httpClient.Post(n.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("⚠️ Failed to send alert webhook: %v", err)
		return
	}
	resp.Body.Close()
}
