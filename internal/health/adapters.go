package health

import (
	"context"
	"sort"
	"strings"

	"github.com/baechuer/orderflow/internal/application/notify"
	"github.com/baechuer/orderflow/internal/infrastructure/messaging/kafka"
)

type ConsumerProbe interface {
	State() kafka.State
	Healthy() bool
}

func ConsumerCheck(c ConsumerProbe) CheckFunc {
	return func(context.Context) Component {
		st := c.State()
		switch {
		case c.Healthy():
			return Component{Status: StatusUp, Detail: string(st)}
		case st == kafka.StatePaused, st == kafka.StateSubscribed, st == kafka.StateConnecting:
			return Component{Status: StatusDegraded, Detail: string(st)}
		default:
			return Component{Status: StatusDown, Detail: string(st)}
		}
	}
}

type ChannelProbe interface {
	CheckHealth(ctx context.Context) notify.HealthReport
}

// ChannelsCheck is DOWN only when no channel can deliver.
func ChannelsCheck(p ChannelProbe) CheckFunc {
	return func(ctx context.Context) Component {
		rep := p.CheckHealth(ctx)
		var down []string
		for name, up := range rep.Channels {
			if !up {
				down = append(down, name)
			}
		}
		sort.Strings(down)
		detail := ""
		if len(down) > 0 {
			detail = "down: " + strings.Join(down, ",")
		}

		switch rep.Status {
		case notify.Healthy:
			return Component{Status: StatusUp}
		case notify.Degraded:
			return Component{Status: StatusDegraded, Detail: detail}
		default:
			return Component{Status: StatusDown, Detail: detail}
		}
	}
}
