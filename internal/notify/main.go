package notify

import (
	"fmt"
	"slices"
	"strings"
)

type MessengerType string

const (
	// MessengerTypeAWSEmail sends notifications using AWS SES.
	MessengerTypeAWSEmail MessengerType = "AWS_EMAIL"
	// MessengerTypeDryRun prints notifications to stdout, used in development.
	MessengerTypeDryRun MessengerType = "DRY_RUN"
)

func (mt MessengerType) All() []MessengerType {
	return []MessengerType{MessengerTypeAWSEmail, MessengerTypeDryRun}
}

func ParseMessengerType(messengerTypeStr string) (MessengerType, error) {
	mType := MessengerType(strings.ToUpper(messengerTypeStr))
	if slices.Contains(MessengerType("").All(), mType) {
		return mType, nil
	}

	return "", fmt.Errorf("invalid messenger type %q", messengerTypeStr)
}

type MessengerOptions struct {
	MessengerType MessengerType

	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	AWSSESSenderID     string
}

func GetClient(opts MessengerOptions) (MessengerClient, error) {
	switch opts.MessengerType {
	case MessengerTypeAWSEmail:
		return NewAWSSESClient(opts.AWSAccessKeyID, opts.AWSSecretAccessKey, opts.AWSRegion, opts.AWSSESSenderID)
	case MessengerTypeDryRun:
		return NewDryRunClient()
	default:
		return nil, fmt.Errorf("unknown messenger type: %q", opts.MessengerType)
	}
}
