package async_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reasyhq/platform/internal/async"
	"github.com/reasyhq/platform/internal/config"
)

func TestGetConfigs(t *testing.T) {
	p := async.ScheduledTaskConfigProvider{
		Config: &config.Config{
			Scheduler: config.Scheduler{
				Tasks: []config.Task{
					{
						TaskType: config.TypeTrialExpiry,
						Cronspec: "0 * * * *",
						Retries:  3,
					},
					{
						TaskType: config.TypeTenantProvision,
						Cronspec: "*/5 * * * *",
						Retries:  1,
					},
				},
			},
		},
	}

	configs, err := p.GetConfigs()
	assert.NoError(t, err)
	assert.Len(t, configs, 2)
	assert.Equal(t, "0 * * * *", configs[0].Cronspec)
	assert.Equal(t, config.TypeTrialExpiry, configs[0].Task.Type())
}
