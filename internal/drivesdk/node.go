package drivesdk

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
)

// Node is a file or folder in the drive tree, identified by name within its
// parent. Child listings are cached until Refresh or a local mutation
// invalidates them; the service remains the source of truth.
type Node struct {
	sdk    *DriveSDK
	parent *Node

	ID    string
	DocID string
	Etag  string

	name string
	typ  string
	size int64

	children map[string]*Node
	fetched  bool
}

func (n *Node) Name() string { return n.name }
func (n *Node) Size() int64  { return n.size }

func (n *Node) IsFolder() bool {
	return n.typ == itemTypeFolder || n.typ == itemTypeLibrary
}

// Child looks up an immediate child by name. Returns ErrNodeNotFound on a
// miss; the caller decides what a miss means.
func (n *Node) Child(ctx context.Context, name string) (*Node, error) {
	if !n.IsFolder() {
		return nil, fmt.Errorf("%w: %s", ErrNotFolder, n.name)
	}
	if !n.fetched {
		if err := n.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	if child, ok := n.children[name]; ok {
		return child, nil
	}
	return nil, fmt.Errorf("%w: %q in %q", ErrNodeNotFound, name, n.name)
}

// Refresh re-fetches the child listing from the service.
func (n *Node) Refresh(ctx context.Context) error {
	var details []folderDetails
	resp, err := n.sdk.client.R().
		SetContext(ctx).
		SetBody([]retrieveDetailsRequest{{Drivewsid: n.ID, PartialData: false}}).
		SetSuccessResult(&details).
		Post(epRetrieveDetails)
	if err := handleAPIError(resp, err, "retrieve folder "+n.name); err != nil {
		return err
	}
	if len(details) == 0 {
		return fmt.Errorf("retrieve folder %s: %w", n.name, ErrNodeNotFound)
	}

	folder := details[0]
	n.Etag = folder.Etag
	n.children = make(map[string]*Node, len(folder.Items))
	for _, item := range folder.Items {
		n.children[displayName(item)] = &Node{
			sdk:    n.sdk,
			parent: n,
			ID:     item.Drivewsid,
			DocID:  item.Docwsid,
			Etag:   item.Etag,
			name:   displayName(item),
			typ:    item.Type,
			size:   item.Size,
		}
	}
	n.fetched = true
	return nil
}

// CreateFolder creates a child folder. The creation response is not always
// usable (the service sometimes omits the new item's id); in that case it
// returns (nil, nil) and the caller should refresh and re-resolve by name.
func (n *Node) CreateFolder(ctx context.Context, name string) (*Node, error) {
	var created createFoldersResponse
	resp, err := n.sdk.client.R().
		SetContext(ctx).
		SetBody(&createFoldersRequest{
			DestinationDrivewsID: n.ID,
			Folders:              []createFolderSpec{{ClientID: n.sdk.clientID, Name: name}},
		}).
		SetSuccessResult(&created).
		Post(epCreateFolders)
	if err := handleAPIError(resp, err, "create folder "+name); err != nil {
		return nil, err
	}

	if len(created.Folders) == 0 || created.Folders[0].Drivewsid == "" {
		return nil, nil
	}

	item := created.Folders[0]
	child := &Node{
		sdk:    n.sdk,
		parent: n,
		ID:     item.Drivewsid,
		DocID:  item.Docwsid,
		Etag:   item.Etag,
		name:   name,
		typ:    itemTypeFolder,
	}
	if n.fetched {
		n.children[name] = child
	}
	return child, nil
}

// Upload streams content into this folder under the given name. The service
// issues a one-shot upload URL first, then accepts the bytes.
func (n *Node) Upload(ctx context.Context, name string, r io.Reader, size int64) error {
	if !n.IsFolder() {
		return fmt.Errorf("%w: %s", ErrNotFolder, n.name)
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var tickets []uploadTicket
	resp, err := n.sdk.client.R().
		SetContext(ctx).
		SetBody(&uploadTicketRequest{Filename: name, ContentType: contentType, Size: size}).
		SetSuccessResult(&tickets).
		Post(epUploadTicket)
	if err := handleAPIError(resp, err, "upload ticket "+name); err != nil {
		return err
	}
	if len(tickets) == 0 || tickets[0].URL == "" {
		return fmt.Errorf("upload ticket %s: %w", name, &APIError{Status: resp.StatusCode, Message: "no upload url in response"})
	}

	resp, err = n.sdk.client.R().
		SetContext(ctx).
		SetContentType(contentType).
		SetBody(r).
		Put(tickets[0].URL)
	if err := handleAPIError(resp, err, "upload "+name); err != nil {
		return err
	}

	// the listing is stale now; next lookup re-fetches
	n.fetched = false
	return nil
}

// Delete moves this node to the trash.
func (n *Node) Delete(ctx context.Context) error {
	resp, err := n.sdk.client.R().
		SetContext(ctx).
		SetBody(&trashItemsRequest{
			Items: []trashItemSpec{{Drivewsid: n.ID, Etag: n.Etag, ClientID: n.sdk.clientID}},
		}).
		Post(epMoveToTrash)
	if err := handleAPIError(resp, err, "delete "+n.name); err != nil {
		return err
	}

	if n.parent != nil && n.parent.fetched {
		delete(n.parent.children, n.name)
	}
	return nil
}

// Download streams the file's content into w.
func (n *Node) Download(ctx context.Context, w io.Writer) error {
	var info downloadInfo
	resp, err := n.sdk.client.R().
		SetContext(ctx).
		SetQueryParam("document_id", n.DocID).
		SetSuccessResult(&info).
		Get(epDownloadByID)
	if err := handleAPIError(resp, err, "download info "+n.name); err != nil {
		return err
	}
	if info.DataToken.URL == "" {
		return fmt.Errorf("download %s: %w", n.name, &APIError{Status: resp.StatusCode, Message: "no data token in response"})
	}

	resp, err = n.sdk.client.R().
		SetContext(ctx).
		SetOutput(w).
		Get(info.DataToken.URL)
	return handleAPIError(resp, err, "download "+n.name)
}

func displayName(item itemDetails) string {
	if item.Extension != "" {
		return item.Name + "." + item.Extension
	}
	return item.Name
}
