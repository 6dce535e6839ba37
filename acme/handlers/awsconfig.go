package handlers

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/ec2rolecreds"
)

// awsCredentialParams are the parameters shared by every AWS-backed
// provider.
var awsCredentialParams = []ParameterDetail{
	{
		Name:        "region",
		Description: "AWS region to use. Falls back to the environment/shared config",
	},
	{
		Name:        "accessKeyID",
		Description: "Static AWS access key ID. Requires secretAccessKey",
	},
	{
		Name:        "secretAccessKey",
		Description: "Static AWS secret access key. Requires accessKeyID",
	},
	{
		Name:        "sessionToken",
		Description: "Static AWS session token for temporary credentials",
	},
	{
		Name:        "profile",
		Description: "Named profile from the shared AWS config files",
	},
	{
		Name:        "ec2RoleCredentials",
		Description: "Use the EC2 instance role for credentials (bool)",
	},
}

// loadAWSConfig resolves an AWS client configuration from handler params.
// Static keys win over a named profile, which wins over the instance role;
// with none of those set the SDK's default chain applies.
func loadAWSConfig(ctx context.Context, params Params) (aws.Config, error) {
	var optFns []func(*config.LoadOptions) error
	if region := params.String("region"); region != "" {
		optFns = append(optFns, config.WithRegion(region))
	}

	accessKey := params.String("accessKeyID")
	secretKey := params.String("secretAccessKey")
	switch {
	case accessKey != "" && secretKey != "":
		optFns = append(optFns, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, params.String("sessionToken"))))
	case params.String("profile") != "":
		optFns = append(optFns, config.WithSharedConfigProfile(params.String("profile")))
	case params.Bool("ec2RoleCredentials"):
		optFns = append(optFns, config.WithCredentialsProvider(
			aws.NewCredentialsCache(ec2rolecreds.New())))
	}

	return config.LoadDefaultConfig(ctx, optFns...)
}
