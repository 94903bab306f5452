// Package awsutil reads and lists objects in S3.
package awsutil

import (
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/kiteco/ctt/ctt-golib/envutil"
	"github.com/kiteco/ctt/ctt-golib/errors"
)

// region used to look up bucket locations
var defaultRegion = envutil.GetenvDefault("AWS_REGION", "us-west-1")

// Location is a parsed s3://bucket/key uri.
type Location struct {
	Bucket string
	Key    string
}

// IsS3URI returns true if the path is an s3 uri.
func IsS3URI(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// ParseURI splits an s3://bucket/key uri.
func ParseURI(uri string) (Location, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, err
	}
	if u.Scheme != "s3" || u.Host == "" {
		return Location{}, errors.Errorf("%s: not an s3 uri", uri)
	}
	return Location{Bucket: u.Host, Key: strings.TrimPrefix(u.Path, "/")}, nil
}

func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Key
}

// clients are cached per bucket since every bucket needs a region lookup.
var clients = struct {
	sync.Mutex
	byBucket map[string]*s3.S3
}{byBucket: make(map[string]*s3.S3)}

func newClient(region string) (*s3.S3, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}
	return s3.New(sess, aws.NewConfig().WithRegion(region)), nil
}

func clientFor(bucket string) (*s3.S3, error) {
	clients.Lock()
	defer clients.Unlock()
	if c, ok := clients.byBucket[bucket]; ok {
		return c, nil
	}

	lookup, err := newClient(defaultRegion)
	if err != nil {
		return nil, err
	}
	loc, err := lookup.GetBucketLocation(&s3.GetBucketLocationInput{Bucket: aws.String(bucket)})
	if err != nil {
		return nil, errors.Wrapf(err, "locating bucket %s", bucket)
	}
	region := "us-east-1"
	if loc.LocationConstraint != nil {
		region = *loc.LocationConstraint
	}

	c, err := newClient(region)
	if err != nil {
		return nil, err
	}
	clients.byBucket[bucket] = c
	return c, nil
}

// NewS3Reader returns the body of the object at uri.
func NewS3Reader(uri string) (io.ReadCloser, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	client, err := clientFor(loc.Bucket)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "getting %s", uri)
	}
	return out.Body, nil
}

// ListObjects returns the uris of the non-empty objects under the prefix uri.
func ListObjects(prefix string) ([]string, error) {
	loc, err := ParseURI(prefix)
	if err != nil {
		return nil, err
	}
	client, err := clientFor(loc.Bucket)
	if err != nil {
		return nil, err
	}

	var uris []string
	err = client.ListObjectsPages(&s3.ListObjectsInput{
		Bucket: aws.String(loc.Bucket),
		Prefix: aws.String(loc.Key),
	}, func(p *s3.ListObjectsOutput, lastPage bool) bool {
		for _, obj := range p.Contents {
			// zero-size objects are directory markers
			if aws.Int64Value(obj.Size) == 0 {
				continue
			}
			uris = append(uris, Location{Bucket: loc.Bucket, Key: aws.StringValue(obj.Key)}.String())
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", prefix)
	}
	return uris, nil
}
