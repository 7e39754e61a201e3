// Package drivesdk is a thin client for the drive web service. It exposes
// the tree as name-indexed nodes; all sync policy (retries, ordering,
// whitelists) lives with the caller.
package drivesdk

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/imroc/req/v3"

	"github.com/cooklabs/cookdrive/internal/version"
)

const (
	rootDriveID = "FOLDER::com.apple.CloudDocs::root"

	epRetrieveDetails = "/drive/retrieveItemDetailsInFolders"
	epCreateFolders   = "/drive/createFolders"
	epMoveToTrash     = "/drive/moveItemsToTrash"
	epUploadTicket    = "/docs/upload/web"
	epDownloadByID    = "/docs/download/by_id"
)

// DriveSDK is the client for the drive web API.
type DriveSDK struct {
	client   *req.Client
	clientID string
	session  *Session
}

// New creates a drive client. The client itself never retries; the deploy
// layer owns the retry policy so backoff stays uniform across mkdir, upload
// and delete.
func New(baseURL string) *DriveSDK {
	clientID := "auth-" + uuid.NewString()

	client := req.C().
		SetBaseURL(baseURL).
		SetUserAgent(version.AppName + "/" + version.Version).
		SetCommonQueryParam("clientId", clientID).
		SetCommonErrorResult(&APIError{}).
		SetTimeout(2 * time.Minute).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	return &DriveSDK{
		client:   client,
		clientID: clientID,
	}
}

// Root returns the root node of the drive. Requires a logged-in session.
func (s *DriveSDK) Root(ctx context.Context) (*Node, error) {
	if s.session == nil || !s.session.Authenticated() {
		return nil, ErrNotLoggedIn
	}

	root := &Node{
		sdk:  s,
		ID:   rootDriveID,
		name: "root",
		typ:  itemTypeFolder,
	}
	if err := root.Refresh(ctx); err != nil {
		return nil, err
	}
	return root, nil
}
