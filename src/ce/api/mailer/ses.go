package mailer

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/foliosite/folio/src/lib/errors"
)

// SendEmailAPI is the subset of the SES v2 client used by SESTransport.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESConfig configures the SES transport. Empty keys fall back to the
// default AWS credential chain.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// SESTransport sends mails through the AWS SES v2 API.
type SESTransport struct {
	client SendEmailAPI
}

// NewSESTransport creates a transport using the default AWS configuration
// for the given region.
func NewSESTransport(ctx context.Context, cnf SESConfig) (*SESTransport, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cnf.Region),
	}

	if cnf.AccessKeyID != "" && cnf.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cnf.AccessKeyID, cnf.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)

	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfiguration, "failed to load AWS config")
	}

	return NewSESTransportWithClient(sesv2.NewFromConfig(awsCfg)), nil
}

// NewSESTransportWithClient creates a transport with a custom client.
func NewSESTransportWithClient(client SendEmailAPI) *SESTransport {
	return &SESTransport{client: client}
}

// Name implements the Transport interface.
func (t *SESTransport) Name() string {
	return "ses"
}

// Send implements the Transport interface. The message is sent raw so
// that the Reply-To and Message-ID headers are preserved.
func (t *SESTransport) Send(ctx context.Context, msg *Message) error {
	from, to, err := msg.Envelope()

	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfiguration, "invalid envelope")
	}

	data, err := msg.Bytes()

	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to compose message")
	}

	_, err = t.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{
				Data: data,
			},
		},
	})

	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeExternal, "ses delivery failed")
	}

	return nil
}
