// Package signer 签发与校验上传 / 下载令牌
//
// 上传令牌允许前端直传单个对象；下载令牌绑定文件 ID，用于生成有时效的下载链接。
package signer

import (
	"errors"
	"strconv"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ketr501215/Ray-Cloud-Web/config"
)

var (
	ErrTokenExpired = errors.New("令牌已过期")
	ErrTokenInvalid = errors.New("令牌无效")
)

// 令牌用途
const (
	PurposeUpload   = "upload"
	PurposeDownload = "download"
)

const issuer = "ray-cloud"

// Claims 令牌声明
type Claims struct {
	Purpose  string `json:"purpose"`
	Pathname string `json:"pathname,omitempty"` // 仅上传令牌
	FileID   int64  `json:"file_id,omitempty"`  // 仅下载令牌
	jwtv5.RegisteredClaims
}

// Signer 令牌签发器
type Signer struct {
	secret      []byte
	uploadTTL   time.Duration
	downloadTTL time.Duration
	now         func() time.Time
}

// New 创建 Signer
func New(cfg *config.SignerConfig) *Signer {
	return &Signer{
		secret:      []byte(cfg.Secret),
		uploadTTL:   cfg.UploadTokenTTL,
		downloadTTL: cfg.DownloadTokenTTL,
		now:         time.Now,
	}
}

// UploadToken 为指定对象路径签发上传令牌
func (s *Signer) UploadToken(pathname string) (string, time.Time, error) {
	expires := s.now().Add(s.uploadTTL)
	token, err := s.sign(Claims{Purpose: PurposeUpload, Pathname: pathname}, expires)
	return token, expires, err
}

// DownloadToken 为文件签发下载令牌
func (s *Signer) DownloadToken(fileID int64) (string, time.Time, error) {
	expires := s.now().Add(s.downloadTTL)
	claims := Claims{Purpose: PurposeDownload, FileID: fileID}
	claims.Subject = strconv.FormatInt(fileID, 10)
	token, err := s.sign(claims, expires)
	return token, expires, err
}

func (s *Signer) sign(claims Claims, expires time.Time) (string, error) {
	now := s.now()
	claims.RegisteredClaims.ID = uuid.New().String()
	claims.RegisteredClaims.IssuedAt = jwtv5.NewNumericDate(now)
	claims.RegisteredClaims.ExpiresAt = jwtv5.NewNumericDate(expires)
	claims.RegisteredClaims.Issuer = issuer

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse 解析并验证令牌，purpose 不符时视为无效
func (s *Signer) Parse(tokenString, purpose string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	}, jwtv5.WithIssuer(issuer), jwtv5.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Purpose != purpose {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// VerifyDownload 校验下载令牌是否属于 fileID
func (s *Signer) VerifyDownload(tokenString string, fileID int64) error {
	claims, err := s.Parse(tokenString, PurposeDownload)
	if err != nil {
		return err
	}
	if claims.FileID != fileID {
		return ErrTokenInvalid
	}
	return nil
}
