package intercom

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/darkkaiser/intercom-slack-relay/internal/config"
	"github.com/darkkaiser/intercom-slack-relay/internal/failmail"
	apperrors "github.com/darkkaiser/intercom-slack-relay/internal/pkg/errors"
	"github.com/darkkaiser/intercom-slack-relay/internal/pkg/fetcher"
	applog "github.com/darkkaiser/intercom-slack-relay/pkg/log"
	"github.com/tidwall/gjson"
)

const component = "intercom"

// 사용자 정보는 관리 화면 링크로 표시된다.
const adminAppURL = "https://app.intercom.io/a/apps"

// NoCompany 사용자에게 이름이 있는 회사가 하나도 없을 때 회사 자리에 표시되는 문구입니다.
const NoCompany = "no company"

// ErrEnrichmentFailed 사용자 정보 조회에 실패했습니다. 실패 내용은 이미 Reporter로 보고된 상태입니다.
var ErrEnrichmentFailed = apperrors.New(apperrors.Unavailable, "Intercom 사용자 정보 조회에 실패했습니다")

// Reporter 처리할 수 없는 장애를 운영자에게 알립니다.
type Reporter interface {
	Report(ctx context.Context, text string, opts ...failmail.Option)
}

// Profile 알림에 표시할 사용자 정보입니다. 두 값 모두 Slack 링크 형식으로 만들어져 있습니다.
type Profile struct {
	Name    string
	Company string
}

// Client Intercom REST API에서 사용자 정보를 조회하는 클라이언트입니다.
type Client struct {
	fetcher  fetcher.Fetcher
	reporter Reporter

	baseURL       string
	appID         string
	authorization string
}

// NewClient 새로운 Client를 생성합니다. f가 nil이면 기본 Fetcher 체인을 사용합니다.
func NewClient(cfg config.IntercomConfig, f fetcher.Fetcher, reporter Reporter) *Client {
	if reporter == nil {
		panic("intercom: Reporter는 nil일 수 없습니다")
	}
	if f == nil {
		f = fetcher.New(fetcher.Options{Timeout: fetcher.DefaultTimeout})
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(cfg.AppID + ":" + cfg.APIKey))

	return &Client{
		fetcher:  f,
		reporter: reporter,

		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		appID:         cfg.AppID,
		authorization: "Basic " + credentials,
	}
}

// FetchProfile userID에 해당하는 사용자의 이름과 소속 회사를 조회합니다.
//
// 실패하면 원인을 한 번 보고한 뒤 ErrEnrichmentFailed를 반환하므로, 호출자는 다시 보고하지 않아야 합니다.
func (c *Client) FetchProfile(ctx context.Context, userID string) (*Profile, error) {
	profile, err := c.fetchProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"user_id": userID,
		"error":   err,
	}).Error("Intercom 사용자 정보 조회 실패")

	var statusErr *fetcher.HTTPStatusError
	if errors.As(err, &statusErr) {
		c.reporter.Report(ctx, fmt.Sprintf("Unexpected status code %d when getting user info from Intercom", statusErr.StatusCode))
	} else {
		c.reporter.Report(ctx, fmt.Sprintf("Failure on processing Intercom user info:\n%s", apperrors.Diagnostic(err)))
	}

	return nil, ErrEnrichmentFailed
}

func (c *Client) fetchProfile(ctx context.Context, userID string) (*Profile, error) {
	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("Authorization", c.authorization)

	resp, err := fetcher.Get(ctx, c.fetcher, c.baseURL+"/users/"+url.PathEscape(userID), header)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unavailable, "Intercom 응답 본문을 읽을 수 없습니다")
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"user_id": userID,
		"body":    string(body),
	}).Debug("Intercom 사용자 정보 수신")

	return c.parseProfile(body)
}

// parseProfile Intercom 사용자 레코드에서 표시용 이름과 회사 링크를 만듭니다.
//
// 이름이 없으면 이메일을 사용하고, 회사는 이름이 있는 것만 공백으로 이어 붙입니다.
// 링크는 이름이 있는 첫 번째 회사를 가리킵니다.
func (c *Client) parseProfile(body []byte) (*Profile, error) {
	if !gjson.ValidBytes(body) {
		return nil, apperrors.New(apperrors.ParsingFailed, "Intercom 사용자 정보가 올바른 JSON이 아닙니다")
	}

	user := gjson.ParseBytes(body)

	id := user.Get("id")
	if !id.Exists() || id.String() == "" {
		return nil, apperrors.New(apperrors.ParsingFailed, "Intercom 사용자 정보에 id가 없습니다")
	}

	knownAs := user.Get("name").String()
	if knownAs == "" {
		knownAs = user.Get("email").String()
	}

	companies := user.Get("companies.companies")
	if !companies.IsArray() {
		return nil, apperrors.New(apperrors.ParsingFailed, "Intercom 사용자 정보에 companies 목록이 없습니다")
	}

	var names []string
	var firstCompanyID string
	for _, company := range companies.Array() {
		name := company.Get("name").String()
		if name == "" {
			continue
		}
		if len(names) == 0 {
			firstCompanyID = company.Get("id").String()
		}
		names = append(names, name)
	}

	profile := &Profile{
		Name:    fmt.Sprintf("<%s/%s/users/%s|%s>", adminAppURL, c.appID, id.String(), knownAs),
		Company: NoCompany,
	}
	if len(names) > 0 {
		profile.Company = fmt.Sprintf("<%s/%s/companies/%s|%s>", adminAppURL, c.appID, firstCompanyID, strings.Join(names, " "))
	}

	return profile, nil
}
