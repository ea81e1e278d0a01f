package service

// 读路径按固定优先级逐层降级：索引服务 → 本地库 → 静态数据。
// 响应里的 source 字段标记本次命中的层级。
// 各端点的空结果语义不同（榜单空库继续降级、详情空库即404），不做统一。
const (
	SourceIndexer  = "indexer"
	SourceDatabase = "database"
	SourceMock     = "mock"
	SourceDemo     = "demo"
)
