package drivesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRootID   = rootDriveID
	testFolderID = "FOLDER::com.apple.CloudDocs::cooklang"
	testFileID   = "FILE::com.apple.CloudDocs::marker"
)

// fakeDrive serves just enough of the drive API for the node tests.
type fakeDrive struct {
	mu sync.Mutex

	// drivewsid -> child listing
	listings map[string][]itemDetails

	createResponse createFoldersResponse
	errorStatus    int // when set, every drive call answers with this status

	retrieveCalls int
	trashedIDs    []string
	uploadedBody  []byte
	downloadBody  []byte
	sessionHeader string
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func (f *fakeDrive) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/signin", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, signInResponse{SessionToken: "session-token"})
	})

	mux.HandleFunc("POST /drive/retrieveItemDetailsInFolders", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.retrieveCalls++
		f.sessionHeader = r.Header.Get(headerSessionToken)

		if f.errorStatus != 0 {
			w.WriteHeader(f.errorStatus)
			writeJSON(t, w, &APIError{Code: "SERVICE_BUSY", Message: "busy"})
			return
		}

		var reqs []retrieveDetailsRequest
		if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil || len(reqs) != 1 {
			http.Error(w, "bad request body", http.StatusBadRequest)
			return
		}

		id := reqs[0].Drivewsid
		writeJSON(t, w, []folderDetails{{
			itemDetails: itemDetails{Drivewsid: id, Type: itemTypeFolder, Name: "listing", Etag: "e1"},
			Items:       f.listings[id],
		}})
	})

	mux.HandleFunc("POST /drive/createFolders", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(t, w, f.createResponse)
	})

	mux.HandleFunc("POST /drive/moveItemsToTrash", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var trash trashItemsRequest
		if err := json.NewDecoder(r.Body).Decode(&trash); err != nil {
			http.Error(w, "bad request body", http.StatusBadRequest)
			return
		}
		for _, item := range trash.Items {
			f.trashedIDs = append(f.trashedIDs, item.Drivewsid)
		}
		writeJSON(t, w, map[string]any{})
	})

	mux.HandleFunc("POST /docs/upload/web", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []uploadTicket{{URL: "http://" + r.Host + "/upload-target"}})
	})

	mux.HandleFunc("PUT /upload-target", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "bad request body", http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.uploadedBody = body
		f.mu.Unlock()
		writeJSON(t, w, map[string]any{})
	})

	mux.HandleFunc("GET /docs/download/by_id", func(w http.ResponseWriter, r *http.Request) {
		var info downloadInfo
		info.DataToken.URL = "http://" + r.Host + "/download-target"
		writeJSON(t, w, info)
	})

	mux.HandleFunc("GET /download-target", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		body := f.downloadBody
		f.mu.Unlock()
		w.Write(body)
	})

	return mux
}

// startDrive boots the fake service and returns a logged-in client.
func startDrive(t *testing.T, f *fakeDrive) *DriveSDK {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	sdk := New(srv.URL)
	_, err := sdk.Login(context.Background(), "cook@example.com", nil)
	require.NoError(t, err)
	return sdk
}

func markerListing() []itemDetails {
	return []itemDetails{
		{Drivewsid: testFolderID, Name: "CooklangApp", Type: itemTypeFolder, Etag: "e2"},
		{Drivewsid: testFileID, Docwsid: "doc-1", Name: "last_deployed_commit", Extension: "txt", Type: itemTypeFile, Etag: "e3", Size: 7},
	}
}

func TestRootRequiresLogin(t *testing.T) {
	f := &fakeDrive{}
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL).Root(context.Background())
	require.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestRootListsChildren(t *testing.T) {
	f := &fakeDrive{listings: map[string][]itemDetails{testRootID: markerListing()}}
	sdk := startDrive(t, f)
	ctx := context.Background()

	root, err := sdk.Root(ctx)
	require.NoError(t, err)
	assert.True(t, root.IsFolder())
	assert.Equal(t, "session-token", f.sessionHeader)

	folder, err := root.Child(ctx, "CooklangApp")
	require.NoError(t, err)
	assert.True(t, folder.IsFolder())

	// extension folds into the display name
	file, err := root.Child(ctx, "last_deployed_commit.txt")
	require.NoError(t, err)
	assert.False(t, file.IsFolder())
	assert.Equal(t, int64(7), file.Size())
}

func TestChildMiss(t *testing.T) {
	f := &fakeDrive{listings: map[string][]itemDetails{testRootID: markerListing()}}
	sdk := startDrive(t, f)
	ctx := context.Background()

	root, err := sdk.Root(ctx)
	require.NoError(t, err)

	_, err = root.Child(ctx, "no-such-thing")
	require.ErrorIs(t, err, ErrNodeNotFound)
}

func TestChildOnFile(t *testing.T) {
	f := &fakeDrive{listings: map[string][]itemDetails{testRootID: markerListing()}}
	sdk := startDrive(t, f)
	ctx := context.Background()

	root, err := sdk.Root(ctx)
	require.NoError(t, err)
	file, err := root.Child(ctx, "last_deployed_commit.txt")
	require.NoError(t, err)

	_, err = file.Child(ctx, "anything")
	require.ErrorIs(t, err, ErrNotFolder)
}

func TestCreateFolder(t *testing.T) {
	f := &fakeDrive{
		listings: map[string][]itemDetails{testRootID: nil},
		createResponse: createFoldersResponse{
			Folders: []itemDetails{{Drivewsid: "FOLDER::new", Etag: "e9"}},
		},
	}
	sdk := startDrive(t, f)
	ctx := context.Background()

	root, err := sdk.Root(ctx)
	require.NoError(t, err)

	child, err := root.CreateFolder(ctx, "entrees")
	require.NoError(t, err)
	require.NotNil(t, child)
	assert.Equal(t, "FOLDER::new", child.ID)
	assert.True(t, child.IsFolder())

	// the new folder is resolvable without another round trip
	again, err := root.Child(ctx, "entrees")
	require.NoError(t, err)
	assert.Same(t, child, again)
}

func TestCreateFolderUnusableResponse(t *testing.T) {
	f := &fakeDrive{listings: map[string][]itemDetails{testRootID: nil}}
	sdk := startDrive(t, f)
	ctx := context.Background()

	root, err := sdk.Root(ctx)
	require.NoError(t, err)

	child, err := root.CreateFolder(ctx, "entrees")
	require.NoError(t, err)
	assert.Nil(t, child)
}

func TestUploadInvalidatesListing(t *testing.T) {
	f := &fakeDrive{listings: map[string][]itemDetails{testRootID: nil}}
	sdk := startDrive(t, f)
	ctx := context.Background()

	root, err := sdk.Root(ctx)
	require.NoError(t, err)
	calls := f.retrieveCalls

	err = root.Upload(ctx, "pasta.cook", strings.NewReader("noodles"), 7)
	require.NoError(t, err)
	assert.Equal(t, []byte("noodles"), f.uploadedBody)

	// next lookup re-fetches the listing
	_, _ = root.Child(ctx, "whatever")
	assert.Equal(t, calls+1, f.retrieveCalls)
}

func TestDelete(t *testing.T) {
	f := &fakeDrive{listings: map[string][]itemDetails{testRootID: markerListing()}}
	sdk := startDrive(t, f)
	ctx := context.Background()

	root, err := sdk.Root(ctx)
	require.NoError(t, err)
	file, err := root.Child(ctx, "last_deployed_commit.txt")
	require.NoError(t, err)

	require.NoError(t, file.Delete(ctx))
	assert.Equal(t, []string{testFileID}, f.trashedIDs)

	_, err = root.Child(ctx, "last_deployed_commit.txt")
	require.ErrorIs(t, err, ErrNodeNotFound)
}

func TestDownload(t *testing.T) {
	f := &fakeDrive{
		listings:     map[string][]itemDetails{testRootID: markerListing()},
		downloadBody: []byte("abc123\n"),
	}
	sdk := startDrive(t, f)
	ctx := context.Background()

	root, err := sdk.Root(ctx)
	require.NoError(t, err)
	file, err := root.Child(ctx, "last_deployed_commit.txt")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, file.Download(ctx, &buf))
	assert.Equal(t, "abc123\n", buf.String())
}

func TestServiceErrorDecoding(t *testing.T) {
	f := &fakeDrive{errorStatus: http.StatusServiceUnavailable}
	sdk := startDrive(t, f)

	_, err := sdk.Root(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, "SERVICE_BUSY", apiErr.Code)
	assert.True(t, IsTransient(err))
}
