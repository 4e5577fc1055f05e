// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"
	"log"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

// keyDisplayName is the display name of the provisioned Maps API key.
const keyDisplayName = "Geolink Geocoding Key"

// APIKeyFromADC retrieves the Google Maps API key through Application
// Default Credentials, for deployments where the key is provisioned
// in the project instead of injected via environment.
func APIKeyFromADC(ctx context.Context) (string, error) {
	// 1. Get Project ID from ADC
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return "", fmt.Errorf("finding default credentials: %w", err)
	}

	projectID := creds.ProjectID
	if projectID == "" {
		// This happens when using user credentials without a quota project
		return "", errors.New("no project ID found in credentials")
	}

	// 2. Create API Keys client
	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	// 3. List keys to find the one with the expected display name
	req := &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	}

	it := client.ListKeys(ctx, req)

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("listing keys: %w", err)
		}

		if key.DisplayName == keyDisplayName {
			// ListKeys and GetKey redact the KeyString.
			// We must use GetKeyString method to retrieve the secret.
			log.Printf("Found key resource '%s', retrieving secret...", key.Name)

			getReq := &apikeyspb.GetKeyStringRequest{
				Name: key.Name,
			}

			resp, err := client.GetKeyString(ctx, getReq)
			if err != nil {
				return "", fmt.Errorf("getting key string: %w", err)
			}

			if resp.KeyString == "" {
				return "", fmt.Errorf("key '%s' found but KeyString is still empty after GetKeyString", keyDisplayName)
			}

			return resp.KeyString, nil
		}
	}

	return "", fmt.Errorf("key with display name '%s' not found in project %s", keyDisplayName, projectID)
}
