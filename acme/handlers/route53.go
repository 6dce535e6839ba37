package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/aws/smithy-go"

	"github.com/acmevault/acmevault/acme"
	"github.com/acmevault/acmevault/acme/resources"
)

func init() {
	Register("route53", route53Provider{})
}

// route53Provider builds handlers that publish dns-01 TXT records to an
// Amazon Route 53 hosted zone.
type route53Provider struct{}

const (
	route53TXTTTL      = 10
	route53SyncTimeout = 2 * time.Minute
	route53PollEvery   = 4 * time.Second
)

func (route53Provider) IsSupported(chall *resources.Challenge) bool {
	return chall.Type == acme.ChallengeTypeDNS01
}

func (route53Provider) Params() []ParameterDetail {
	return append([]ParameterDetail{
		{
			Name:        "hostedZoneID",
			Description: "Route 53 hosted zone ID. Looked up by record name suffix when empty",
		},
		{
			Name:        "waitForSync",
			Description: "Wait for the record change to reach INSYNC before returning (bool)",
		},
		{
			Name:        "precheckResolver",
			Description: `DNS server ("host:port") to verify TXT propagation against after the change syncs`,
		},
	}, awsCredentialParams...)
}

func (route53Provider) GetHandler(chall *resources.Challenge, params Params) (Handler, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := loadAWSConfig(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("route53: loading AWS config: %w", err)
	}

	return &route53Handler{
		client:           route53.NewFromConfig(cfg),
		zoneID:           params.String("hostedZoneID"),
		waitForSync:      params.Bool("waitForSync"),
		precheckResolver: params.String("precheckResolver"),
	}, nil
}

type route53Handler struct {
	client           *route53.Client
	zoneID           string
	waitForSync      bool
	precheckResolver string
	closed           bool
}

func (h *route53Handler) Handle(chall *resources.Challenge) error {
	if h.closed {
		return ErrHandlerClosed
	}
	if err := checkDecoded(chall); err != nil {
		return err
	}
	dns := chall.Details.DNS
	if dns == nil {
		return fmt.Errorf("route53: challenge %q carries no DNS proof", chall.URI)
	}

	ctx, cancel := context.WithTimeout(context.Background(), route53SyncTimeout)
	defer cancel()

	changeID, err := h.changeRecord(ctx, types.ChangeActionUpsert, dns)
	if err != nil {
		return fmt.Errorf("route53: upserting %q: %w", dns.RecordName, err)
	}
	if h.waitForSync {
		if err := h.waitInsync(ctx, changeID); err != nil {
			return fmt.Errorf("route53: waiting for %q to sync: %w", dns.RecordName, err)
		}
	}
	if h.precheckResolver != "" {
		found, err := CheckTXT(h.precheckResolver, dns.RecordName, dns.RecordValue)
		if err != nil {
			return fmt.Errorf("route53: prechecking %q: %w", dns.RecordName, err)
		}
		if !found {
			return fmt.Errorf("route53: %q did not serve the expected TXT value for %q",
				h.precheckResolver, dns.RecordName)
		}
	}
	return nil
}

func (h *route53Handler) CleanUp(chall *resources.Challenge) error {
	if h.closed {
		return ErrHandlerClosed
	}
	if err := checkDecoded(chall); err != nil {
		return err
	}
	dns := chall.Details.DNS
	if dns == nil {
		return fmt.Errorf("route53: challenge %q carries no DNS proof", chall.URI)
	}

	ctx, cancel := context.WithTimeout(context.Background(), route53SyncTimeout)
	defer cancel()

	_, err := h.changeRecord(ctx, types.ChangeActionDelete, dns)
	if err != nil {
		// Deleting a record that is already gone reports InvalidChangeBatch.
		// Clean-up is idempotent so that is not a failure.
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "InvalidChangeBatch" {
			return nil
		}
		return fmt.Errorf("route53: deleting %q: %w", dns.RecordName, err)
	}
	return nil
}

func (h *route53Handler) Close() error {
	h.closed = true
	return nil
}

func (h *route53Handler) changeRecord(ctx context.Context, action types.ChangeAction, dns *resources.DNSDetails) (string, error) {
	zoneID, err := h.resolveZoneID(ctx, dns.RecordName)
	if err != nil {
		return "", err
	}

	resp, err := h.client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(zoneID),
		ChangeBatch: &types.ChangeBatch{
			Changes: []types.Change{
				{
					Action: action,
					ResourceRecordSet: &types.ResourceRecordSet{
						Name: aws.String(dns.RecordName),
						Type: types.RRTypeTxt,
						TTL:  aws.Int64(route53TXTTTL),
						ResourceRecords: []types.ResourceRecord{
							// TXT rdata must be wrapped in double quotes.
							{Value: aws.String(strconv.Quote(dns.RecordValue))},
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if resp.ChangeInfo == nil || resp.ChangeInfo.Id == nil {
		return "", nil
	}
	return strings.TrimPrefix(*resp.ChangeInfo.Id, "/change/"), nil
}

// resolveZoneID returns the configured hosted zone ID, or finds the most
// specific public zone whose name is a suffix of the record name.
func (h *route53Handler) resolveZoneID(ctx context.Context, recordName string) (string, error) {
	if h.zoneID != "" {
		return h.zoneID, nil
	}

	fqdn := recordName
	if !strings.HasSuffix(fqdn, ".") {
		fqdn += "."
	}
	labels := strings.Split(fqdn, ".")
	for i := range labels {
		candidate := strings.Join(labels[i:], ".")
		if candidate == "" || candidate == "." {
			break
		}
		resp, err := h.client.ListHostedZonesByName(ctx, &route53.ListHostedZonesByNameInput{
			DNSName: aws.String(candidate),
		})
		if err != nil {
			return "", err
		}
		for _, zone := range resp.HostedZones {
			if zone.Name == nil || *zone.Name != candidate {
				continue
			}
			if zone.Config != nil && zone.Config.PrivateZone {
				continue
			}
			h.zoneID = strings.TrimPrefix(*zone.Id, "/hostedzone/")
			return h.zoneID, nil
		}
	}
	return "", fmt.Errorf("no public hosted zone found for %q", recordName)
}

func (h *route53Handler) waitInsync(ctx context.Context, changeID string) error {
	if changeID == "" {
		return nil
	}
	ticker := time.NewTicker(route53PollEvery)
	defer ticker.Stop()
	for {
		resp, err := h.client.GetChange(ctx, &route53.GetChangeInput{
			Id: aws.String(changeID),
		})
		if err != nil {
			return err
		}
		if resp.ChangeInfo != nil && resp.ChangeInfo.Status == types.ChangeStatusInsync {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
