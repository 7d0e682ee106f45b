package dto

// ── 文件模块 DTO ──

// StagedFile 已写入对象存储、尚未入库的文件
type StagedFile struct {
	Filename     string  `json:"filename"      binding:"required,max=512"`
	OriginalName string  `json:"original_name" binding:"required,max=512"`
	MimeType     string  `json:"mime_type"     binding:"max=255"`
	Size         int64   `json:"size"          binding:"min=0"`
	URL          string  `json:"url"           binding:"required"`
	Category     string  `json:"category"      binding:"max=100"`
	Description  string  `json:"description"`
	FolderName   *string `json:"folder_name"   binding:"omitempty,max=255"`
	Deadline     *string `json:"deadline"`
}

// ConfirmFilesRequest 确认上传（批量入库）
type ConfirmFilesRequest struct {
	Files []StagedFile `json:"files" binding:"required,min=1,dive"`
}

// ConfirmFilesResponse 确认上传结果
type ConfirmFilesResponse struct {
	Count int            `json:"count"`
	Files []FileResponse `json:"files"`
}

// UploadTokenRequest 申请前端直传令牌
type UploadTokenRequest struct {
	Pathname string `json:"pathname" binding:"required,min=1,max=512"`
}

// UploadTokenResponse 直传令牌
type UploadTokenResponse struct {
	Token     string `json:"token"`
	Pathname  string `json:"pathname"` // 实际写入的对象名
	ExpiresAt string `json:"expires_at"`
}

// UpdateCategoryRequest 修改文件分类
type UpdateCategoryRequest struct {
	Category string `json:"category" binding:"required,min=1,max=100"`
}

// DownloadLinkResponse 带签名的下载链接
type DownloadLinkResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}

// FileResponse 文件信息响应
type FileResponse struct {
	ID           int64   `json:"id"`
	Filename     string  `json:"filename"`
	OriginalName string  `json:"original_name"`
	MimeType     string  `json:"mime_type"`
	Size         int64   `json:"size"`
	SizeHuman    string  `json:"size_human"` // "1.2 MB"
	URL          string  `json:"url"`
	Category     string  `json:"category"`
	Description  string  `json:"description"`
	FolderName   *string `json:"folder_name,omitempty"`
	Semester     string  `json:"semester,omitempty"`
	Deadline     string  `json:"deadline,omitempty"`
	CreatedAt    string  `json:"created_at"`
	CreatedAgo   string  `json:"created_ago"`
}

// FileBundleResponse 文件夹聚合（单文件时 file_count=1）
type FileBundleResponse struct {
	ID           int64   `json:"id"`
	OriginalName string  `json:"original_name"`
	URL          string  `json:"url"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	FolderName   *string `json:"folder_name"`
	IsFolder     bool    `json:"is_folder"`
	FileCount    int64   `json:"file_count"`
	Size         int64   `json:"size"`
	SizeHuman    string  `json:"size_human"`
	CreatedAt    string  `json:"created_at"`
	CreatedAgo   string  `json:"created_ago"`
}

// CategoryStatResponse 分类统计
type CategoryStatResponse struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}
