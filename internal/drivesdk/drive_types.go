package drivesdk

const (
	itemTypeFolder  = "FOLDER"
	itemTypeLibrary = "APP_LIBRARY"
	itemTypeFile    = "FILE"
)

type signInRequest struct {
	AccountName string   `json:"accountName"`
	RememberMe  bool     `json:"rememberMe"`
	TrustTokens []string `json:"trustTokens,omitempty"`
}

type signInResponse struct {
	SessionToken string `json:"sessionToken"`
	Requires2FA  bool   `json:"hsaChallengeRequired"`
	Trusted      bool   `json:"trustedSession"`
}

type verifyCodeRequest struct {
	SecurityCode string `json:"securityCode"`
}

type trustResponse struct {
	TrustToken string `json:"trustToken"`
}

// SessionState is the persisted part of a session, written next to the CLI
// config so later runs can skip interactive verification.
type SessionState struct {
	AppleID    string `json:"apple_id"`
	TrustToken string `json:"trust_token"`
}

type itemDetails struct {
	Drivewsid string `json:"drivewsid"`
	Docwsid   string `json:"docwsid,omitempty"`
	Name      string `json:"name"`
	Extension string `json:"extension,omitempty"`
	Type      string `json:"type"`
	Etag      string `json:"etag"`
	Size      int64  `json:"size,omitempty"`
}

type retrieveDetailsRequest struct {
	Drivewsid   string `json:"drivewsid"`
	PartialData bool   `json:"partialData"`
}

type folderDetails struct {
	itemDetails
	Items []itemDetails `json:"items"`
}

type createFoldersRequest struct {
	DestinationDrivewsID string             `json:"destinationDrivewsId"`
	Folders              []createFolderSpec `json:"folders"`
}

type createFolderSpec struct {
	ClientID string `json:"clientId"`
	Name     string `json:"name"`
}

type createFoldersResponse struct {
	Folders []itemDetails `json:"folders"`
}

type trashItemsRequest struct {
	Items []trashItemSpec `json:"items"`
}

type trashItemSpec struct {
	Drivewsid string `json:"drivewsid"`
	Etag      string `json:"etag"`
	ClientID  string `json:"clientId"`
}

type uploadTicketRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type uploadTicket struct {
	URL string `json:"url"`
}

type downloadInfo struct {
	DataToken struct {
		URL string `json:"url"`
	} `json:"data_token"`
}
