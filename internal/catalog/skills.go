package catalog

// 技能分类目录：8 个维度，60 项技能。目录是纯数据，内容变更需要同步
// 审核步骤与资源对技能 key 的引用（New 会在启动时校验）。

var defaultDimensions = []Dimension{
	{Key: "fundamentals", Label: "编程基础"},
	{Key: "data_structures", Label: "数据结构"},
	{Key: "algorithms", Label: "算法"},
	{Key: "systems", Label: "系统与并发"},
	{Key: "databases", Label: "数据库"},
	{Key: "design", Label: "软件设计"},
	{Key: "testing", Label: "测试与调试"},
	{Key: "tooling", Label: "工程工具链"},
}

var defaultSkills = []Skill{
	// 编程基础
	{Key: "variables_types", Dimension: "fundamentals", Label: "变量与类型"},
	{Key: "control_flow", Dimension: "fundamentals", Label: "控制流"},
	{Key: "functions", Dimension: "fundamentals", Label: "函数与作用域"},
	{Key: "error_handling", Dimension: "fundamentals", Label: "错误处理"},
	{Key: "string_processing", Dimension: "fundamentals", Label: "字符串处理"},
	{Key: "io_basics", Dimension: "fundamentals", Label: "输入输出"},
	{Key: "memory_model", Dimension: "fundamentals", Label: "内存模型与引用"},
	{Key: "numeric_literacy", Dimension: "fundamentals", Label: "数值与精度"},

	// 数据结构
	{Key: "arrays_slices", Dimension: "data_structures", Label: "数组与切片"},
	{Key: "hash_maps", Dimension: "data_structures", Label: "哈希表"},
	{Key: "linked_lists", Dimension: "data_structures", Label: "链表"},
	{Key: "stacks_queues", Dimension: "data_structures", Label: "栈与队列"},
	{Key: "trees", Dimension: "data_structures", Label: "树"},
	{Key: "graphs", Dimension: "data_structures", Label: "图"},
	{Key: "heaps", Dimension: "data_structures", Label: "堆与优先队列"},
	{Key: "ds_selection", Dimension: "data_structures", Label: "结构选型"},

	// 算法
	{Key: "complexity_analysis", Dimension: "algorithms", Label: "复杂度分析"},
	{Key: "sorting", Dimension: "algorithms", Label: "排序"},
	{Key: "searching", Dimension: "algorithms", Label: "查找与二分"},
	{Key: "recursion", Dimension: "algorithms", Label: "递归与分治"},
	{Key: "dynamic_programming", Dimension: "algorithms", Label: "动态规划"},
	{Key: "greedy", Dimension: "algorithms", Label: "贪心策略"},
	{Key: "graph_traversal", Dimension: "algorithms", Label: "图遍历"},
	{Key: "string_algorithms", Dimension: "algorithms", Label: "字符串算法"},

	// 系统与并发
	{Key: "processes_threads", Dimension: "systems", Label: "进程与线程"},
	{Key: "concurrency_primitives", Dimension: "systems", Label: "并发原语"},
	{Key: "race_conditions", Dimension: "systems", Label: "竞态与同步"},
	{Key: "networking_basics", Dimension: "systems", Label: "网络基础"},
	{Key: "http_protocol", Dimension: "systems", Label: "HTTP 协议"},
	{Key: "caching", Dimension: "systems", Label: "缓存策略"},
	{Key: "os_fundamentals", Dimension: "systems", Label: "操作系统基础"},

	// 数据库
	{Key: "sql_queries", Dimension: "databases", Label: "SQL 查询"},
	{Key: "joins_aggregation", Dimension: "databases", Label: "连接与聚合"},
	{Key: "schema_design", Dimension: "databases", Label: "模式设计"},
	{Key: "indexing", Dimension: "databases", Label: "索引"},
	{Key: "transactions", Dimension: "databases", Label: "事务与隔离级别"},
	{Key: "normalization", Dimension: "databases", Label: "范式化"},
	{Key: "orm_usage", Dimension: "databases", Label: "ORM 使用"},

	// 软件设计
	{Key: "api_design", Dimension: "design", Label: "API 设计"},
	{Key: "modularity", Dimension: "design", Label: "模块划分"},
	{Key: "design_patterns", Dimension: "design", Label: "设计模式"},
	{Key: "error_contract", Dimension: "design", Label: "错误契约设计"},
	{Key: "data_modeling", Dimension: "design", Label: "数据建模"},
	{Key: "tradeoff_analysis", Dimension: "design", Label: "权衡分析"},
	{Key: "readability", Dimension: "design", Label: "可读性与命名"},
	{Key: "refactoring", Dimension: "design", Label: "重构"},

	// 测试与调试
	{Key: "unit_testing", Dimension: "testing", Label: "单元测试"},
	{Key: "test_design", Dimension: "testing", Label: "用例设计"},
	{Key: "debugging", Dimension: "testing", Label: "调试方法"},
	{Key: "assertions_invariants", Dimension: "testing", Label: "断言与不变量"},
	{Key: "mocking", Dimension: "testing", Label: "测试替身"},
	{Key: "edge_cases", Dimension: "testing", Label: "边界条件"},
	{Key: "regression_testing", Dimension: "testing", Label: "回归测试"},

	// 工程工具链
	{Key: "version_control", Dimension: "tooling", Label: "版本控制"},
	{Key: "build_systems", Dimension: "tooling", Label: "构建系统"},
	{Key: "shell_basics", Dimension: "tooling", Label: "命令行基础"},
	{Key: "dependency_management", Dimension: "tooling", Label: "依赖管理"},
	{Key: "code_review", Dimension: "tooling", Label: "代码评审"},
	{Key: "ci_basics", Dimension: "tooling", Label: "持续集成基础"},
	{Key: "documentation", Dimension: "tooling", Label: "文档习惯"},
}
