package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/sirupsen/logrus"

	"github.com/bitstarkbridge/aframp-backend/internal/utils"
)

// awsSESInterface is used to send emails.
type awsSESInterface interface {
	SendEmail(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// awsSESClient is used to send emails.
type awsSESClient struct {
	emailService awsSESInterface
	senderID     string
}

func (c *awsSESClient) MessengerType() MessengerType {
	return MessengerTypeAWSEmail
}

func (c *awsSESClient) SendMessage(ctx context.Context, message Message) error {
	if err := message.Validate(); err != nil {
		return fmt.Errorf("validating message to send an email through AWS: %w", err)
	}

	emailInput := generateAWSEmail(message, c.senderID)

	_, err := c.emailService.SendEmail(ctx, emailInput)
	if err != nil {
		return fmt.Errorf("sending AWS SES email: %w", err)
	}

	logrus.Debugf("aws ses sent an email to %q", utils.TruncateString(message.ToEmail, 3))
	return nil
}

func generateAWSEmail(message Message, sender string) *ses.SendEmailInput {
	return &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{message.ToEmail},
		},
		Message: &types.Message{
			Body: &types.Body{
				Text: &types.Content{
					Charset: aws.String("utf-8"),
					Data:    aws.String(message.Body),
				},
			},
			Subject: &types.Content{
				Charset: aws.String("utf-8"),
				Data:    aws.String(message.Subject),
			},
		},
		Source: aws.String(sender),
	}
}

// NewAWSSESClient creates a new AWS SES client, used to send emails.
func NewAWSSESClient(accessKeyID, secretAccessKey, region, senderID string) (*awsSESClient, error) {
	senderID = strings.TrimSpace(senderID)
	if _, err := utils.SanitizeAndValidateEmail(senderID); err != nil {
		return nil, fmt.Errorf("aws SES senderID is invalid: %w", err)
	}

	cfg, err := loadAWSConfig(accessKeyID, secretAccessKey, region)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}

	return &awsSESClient{
		senderID:     senderID,
		emailService: ses.NewFromConfig(cfg),
	}, nil
}

// loadAWSConfig loads the AWS config from static credentials, if available, otherwise from the AWS default session.
func loadAWSConfig(accessKeyID, secretAccessKey, region string) (aws.Config, error) {
	accessKeyID = strings.TrimSpace(accessKeyID)
	secretAccessKey = strings.TrimSpace(secretAccessKey)
	region = strings.TrimSpace(region)

	if accessKeyID != "" && secretAccessKey != "" && region != "" {
		logrus.Info("aws will be configured with static credentials")
		cfg, err := config.LoadDefaultConfig(context.Background(),
			config.WithRegion(region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
		)
		if err != nil {
			return aws.Config{}, fmt.Errorf("loading AWS config from static credentials: %w", err)
		}
		return cfg, nil
	}

	logrus.Info("aws will be configured from the default session")
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config from the default session: %w", err)
	}
	return cfg, nil
}

var _ MessengerClient = (*awsSESClient)(nil)
