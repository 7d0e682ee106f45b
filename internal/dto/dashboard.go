package dto

// DashboardResponse 首页概览
type DashboardResponse struct {
	Semester          SemesterResponse       `json:"semester"`
	RecentContents    []ContentResponse      `json:"recent_contents"`
	RecentFiles       []FileBundleResponse   `json:"recent_files"`
	CategoryStats     []CategoryStatResponse `json:"category_stats"`
	UpcomingDeadlines []DeadlineItem         `json:"upcoming_deadlines"`
	GeneratedAt       string                 `json:"generated_at"`
}
