package metrics

import (
	"time"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/storage"
)

// Collector periodically publishes store contents as gauges. It opens the
// store for each snapshot so other commands can use the database in between.
type Collector struct {
	open     storage.Opener
	interval time.Duration
	stopCh   chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(open storage.Opener, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Collector{
		open:     open,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		c.Collect()

		for {
			select {
			case <-ticker.C:
				c.Collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

// Collect takes one snapshot of the store and reports storage health
func (c *Collector) Collect() {
	logger := log.WithComponent("metrics")

	store, err := c.open()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open store")
		UpdateComponent("storage", false, err.Error())
		return
	}
	defer store.Close()

	templates, err := store.ListTemplates()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list templates")
		UpdateComponent("storage", false, err.Error())
		return
	}

	TemplatesTotal.Set(float64(len(templates)))
	TemplateCapacity.Reset()
	for _, named := range templates {
		capacity := -1
		if limit, ok := named.Template.InstanceCap().Limit(); ok {
			capacity = limit
		}
		TemplateCapacity.WithLabelValues(named.Name).Set(float64(capacity))
	}

	creds, err := store.ListCredentials()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list credentials")
		UpdateComponent("storage", false, err.Error())
		return
	}
	CredentialsTotal.Set(float64(len(creds)))

	UpdateComponent("storage", true, "")
}
