package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// MetricsPublisher wraps a CloudWatch client and a metric namespace.
type MetricsPublisher struct {
	CW        CloudWatchAPI
	Namespace string
}

// NewMetricsPublisher returns a MetricsPublisher bound to a namespace.
func NewMetricsPublisher(cw CloudWatchAPI, namespace string) *MetricsPublisher {
	return &MetricsPublisher{
		CW:        cw,
		Namespace: namespace,
	}
}

// CountCheckout emits a single count datapoint for a checkout outcome
// ("success", "rejected", "conflict", "error"). Callers treat this as
// best-effort and must not fail the request on a metric error.
func (m *MetricsPublisher) CountCheckout(ctx context.Context, outcome string) error {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: &m.Namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: awsString("Checkout"),
				Timestamp:  awsTime(time.Now().UTC()),
				Value:      awsFloat64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{
						Name:  awsString("Outcome"),
						Value: &outcome,
					},
				},
			},
		},
	}

	_, err := m.CW.PutMetricData(ctx, input)
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}

// helpers
func awsString(s string) *string { return &s }
func awsFloat64(f float64) *float64 { return &f }
func awsTime(t time.Time) *time.Time { return &t }
