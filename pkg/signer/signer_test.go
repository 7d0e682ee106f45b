package signer

import (
	"errors"
	"testing"
	"time"

	"github.com/ketr501215/Ray-Cloud-Web/config"
)

func newTestSigner() *Signer {
	return New(&config.SignerConfig{
		Secret:           "test-secret-0123456789",
		UploadTokenTTL:   30 * time.Minute,
		DownloadTokenTTL: 10 * time.Minute,
	})
}

func TestUploadToken_RoundTrip(t *testing.T) {
	s := newTestSigner()
	token, expires, err := s.UploadToken("uploads/a.pdf")
	if err != nil {
		t.Fatalf("签发上传令牌失败: %v", err)
	}
	if time.Until(expires) <= 29*time.Minute {
		t.Errorf("过期时间不符: %s", expires)
	}

	claims, err := s.Parse(token, PurposeUpload)
	if err != nil {
		t.Fatalf("解析上传令牌失败: %v", err)
	}
	if claims.Pathname != "uploads/a.pdf" {
		t.Errorf("期望 pathname=uploads/a.pdf，实际=%s", claims.Pathname)
	}

	if _, err := s.Parse(token, PurposeDownload); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("用途不符应返回 ErrTokenInvalid，实际 %v", err)
	}
}

func TestDownloadToken_Verify(t *testing.T) {
	s := newTestSigner()
	token, _, err := s.DownloadToken(42)
	if err != nil {
		t.Fatalf("签发下载令牌失败: %v", err)
	}
	if err := s.VerifyDownload(token, 42); err != nil {
		t.Errorf("校验应通过: %v", err)
	}
	if err := s.VerifyDownload(token, 43); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("文件 ID 不符应返回 ErrTokenInvalid，实际 %v", err)
	}
}

func TestParse_Expired(t *testing.T) {
	s := newTestSigner()
	issued := time.Now().Add(-time.Hour)
	s.now = func() time.Time { return issued }
	token, _, err := s.DownloadToken(1)
	if err != nil {
		t.Fatalf("签发失败: %v", err)
	}

	s.now = time.Now
	if _, err := s.Parse(token, PurposeDownload); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("期望 ErrTokenExpired，实际 %v", err)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	token, _, _ := newTestSigner().DownloadToken(1)
	other := New(&config.SignerConfig{Secret: "another-secret-0123456", DownloadTokenTTL: time.Minute})
	if _, err := other.Parse(token, PurposeDownload); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("密钥不符应返回 ErrTokenInvalid，实际 %v", err)
	}
}
