package catalog

// 学习资源目录。Prerequisites 引用其他资源 ID，必须构成 DAG；
// 路线生成器对被选中资源做拓扑排序，未被选中的先修也会被补插进路线。

var defaultResources = []Resource{
	// Phase 1 基础
	{ID: "rd-lang-basics", Type: ResourceReading, Title: "语言基础：类型、控制流与函数", Phase: 1, Difficulty: 1, EstimatedHours: 4,
		SkillKeys: []string{"variables_types", "control_flow", "functions"}},
	{ID: "ex-control-flow", Type: ResourceExercise, Title: "控制流练习集", Phase: 1, Difficulty: 1, EstimatedHours: 3,
		SkillKeys: []string{"control_flow", "io_basics"}, Prerequisites: []string{"rd-lang-basics"}},
	{ID: "rd-memory", Type: ResourceReading, Title: "内存模型与引用语义", Phase: 1, Difficulty: 2, EstimatedHours: 3,
		SkillKeys: []string{"memory_model", "numeric_literacy"}, Prerequisites: []string{"rd-lang-basics"}},
	{ID: "rd-strings", Type: ResourceReading, Title: "字符串处理专题", Phase: 1, Difficulty: 2, EstimatedHours: 2,
		SkillKeys: []string{"string_processing"}, Prerequisites: []string{"rd-lang-basics"}},
	{ID: "ex-strings", Type: ResourceExercise, Title: "字符串练习集", Phase: 1, Difficulty: 2, EstimatedHours: 3,
		SkillKeys: []string{"string_processing", "edge_cases"}, Prerequisites: []string{"rd-strings"}},
	{ID: "rd-errors", Type: ResourceReading, Title: "错误处理模式", Phase: 1, Difficulty: 2, EstimatedHours: 2,
		SkillKeys: []string{"error_handling", "error_contract"}, Prerequisites: []string{"rd-lang-basics"}},
	{ID: "rd-git", Type: ResourceReading, Title: "Git 工作流入门", Phase: 1, Difficulty: 1, EstimatedHours: 2,
		SkillKeys: []string{"version_control"}},
	{ID: "rd-shell", Type: ResourceReading, Title: "命令行生存指南", Phase: 1, Difficulty: 1, EstimatedHours: 2,
		SkillKeys: []string{"shell_basics"}},
	{ID: "ms-foundations", Type: ResourceMilestone, Title: "里程碑：基础关卡", Phase: 1, Difficulty: 2, EstimatedHours: 1,
		SkillKeys: []string{"control_flow", "functions", "string_processing"},
		Prerequisites: []string{"ex-control-flow", "ex-strings", "rd-errors"}},

	// Phase 2 数据结构 / 算法 / 数据库
	{ID: "rd-arrays-maps", Type: ResourceReading, Title: "数组、切片与哈希表", Phase: 2, Difficulty: 2, EstimatedHours: 3,
		SkillKeys: []string{"arrays_slices", "hash_maps"}, Prerequisites: []string{"ms-foundations"}},
	{ID: "ex-ds-basics", Type: ResourceExercise, Title: "基础数据结构练习", Phase: 2, Difficulty: 2, EstimatedHours: 4,
		SkillKeys: []string{"arrays_slices", "hash_maps", "stacks_queues"}, Prerequisites: []string{"rd-arrays-maps"}},
	{ID: "rd-trees-graphs", Type: ResourceReading, Title: "树与图", Phase: 2, Difficulty: 3, EstimatedHours: 4,
		SkillKeys: []string{"trees", "graphs", "linked_lists"}, Prerequisites: []string{"rd-arrays-maps"}},
	{ID: "rd-complexity", Type: ResourceReading, Title: "复杂度分析方法", Phase: 2, Difficulty: 2, EstimatedHours: 2,
		SkillKeys: []string{"complexity_analysis"}, Prerequisites: []string{"ms-foundations"}},
	{ID: "ex-sort-search", Type: ResourceExercise, Title: "排序与查找练习", Phase: 2, Difficulty: 3, EstimatedHours: 4,
		SkillKeys: []string{"sorting", "searching"}, Prerequisites: []string{"rd-complexity", "ex-ds-basics"}},
	{ID: "ex-recursion", Type: ResourceExercise, Title: "递归与分治练习", Phase: 2, Difficulty: 3, EstimatedHours: 4,
		SkillKeys: []string{"recursion"}, Prerequisites: []string{"rd-complexity"}},
	{ID: "ex-graph-traversal", Type: ResourceExercise, Title: "图遍历练习", Phase: 2, Difficulty: 4, EstimatedHours: 4,
		SkillKeys: []string{"graph_traversal", "graphs"}, Prerequisites: []string{"rd-trees-graphs"}},
	{ID: "rd-dp-greedy", Type: ResourceReading, Title: "动态规划与贪心入门", Phase: 2, Difficulty: 4, EstimatedHours: 4,
		SkillKeys: []string{"dynamic_programming", "greedy"}, Prerequisites: []string{"ex-recursion"}},
	{ID: "rd-sql", Type: ResourceReading, Title: "SQL 查询与聚合", Phase: 2, Difficulty: 2, EstimatedHours: 3,
		SkillKeys: []string{"sql_queries", "joins_aggregation"}, Prerequisites: []string{"ms-foundations"}},
	{ID: "ex-sql", Type: ResourceExercise, Title: "SQL 实战练习", Phase: 2, Difficulty: 3, EstimatedHours: 3,
		SkillKeys: []string{"sql_queries", "joins_aggregation", "indexing"}, Prerequisites: []string{"rd-sql"}},
	{ID: "rd-schema", Type: ResourceReading, Title: "模式设计与范式", Phase: 2, Difficulty: 3, EstimatedHours: 3,
		SkillKeys: []string{"schema_design", "normalization", "data_modeling"}, Prerequisites: []string{"rd-sql"}},
	{ID: "rd-txn", Type: ResourceReading, Title: "事务与隔离级别", Phase: 2, Difficulty: 4, EstimatedHours: 2,
		SkillKeys: []string{"transactions"}, Prerequisites: []string{"rd-schema"}},
	{ID: "ms-core", Type: ResourceMilestone, Title: "里程碑：核心能力关卡", Phase: 2, Difficulty: 3, EstimatedHours: 1,
		SkillKeys: []string{"ds_selection", "complexity_analysis", "sql_queries"},
		Prerequisites: []string{"ex-sort-search", "ex-sql"}},

	// Phase 3 系统 / 设计 / 测试
	{ID: "rd-http", Type: ResourceReading, Title: "HTTP 与 REST 语义", Phase: 3, Difficulty: 2, EstimatedHours: 2,
		SkillKeys: []string{"http_protocol", "networking_basics"}, Prerequisites: []string{"ms-core"}},
	{ID: "rd-api-design", Type: ResourceReading, Title: "API 设计准则", Phase: 3, Difficulty: 3, EstimatedHours: 3,
		SkillKeys: []string{"api_design", "error_contract"}, Prerequisites: []string{"rd-http"}},
	{ID: "rd-concurrency", Type: ResourceReading, Title: "并发原语与竞态", Phase: 3, Difficulty: 4, EstimatedHours: 4,
		SkillKeys: []string{"concurrency_primitives", "race_conditions", "processes_threads"}, Prerequisites: []string{"ms-core"}},
	{ID: "rd-caching", Type: ResourceReading, Title: "缓存策略与失效", Phase: 3, Difficulty: 4, EstimatedHours: 2,
		SkillKeys: []string{"caching"}, Prerequisites: []string{"rd-http"}},
	{ID: "rd-testing", Type: ResourceReading, Title: "测试设计与替身", Phase: 3, Difficulty: 3, EstimatedHours: 3,
		SkillKeys: []string{"unit_testing", "test_design", "mocking"}, Prerequisites: []string{"ms-core"}},
	{ID: "ex-testing", Type: ResourceExercise, Title: "为遗留代码补测试", Phase: 3, Difficulty: 4, EstimatedHours: 4,
		SkillKeys: []string{"unit_testing", "regression_testing", "refactoring"}, Prerequisites: []string{"rd-testing"}},
	{ID: "rd-debugging", Type: ResourceReading, Title: "系统化调试", Phase: 3, Difficulty: 3, EstimatedHours: 2,
		SkillKeys: []string{"debugging", "assertions_invariants"}, Prerequisites: []string{"ms-core"}},
	{ID: "rd-patterns", Type: ResourceReading, Title: "模块划分与常用模式", Phase: 3, Difficulty: 4, EstimatedHours: 4,
		SkillKeys: []string{"modularity", "design_patterns", "readability"}, Prerequisites: []string{"rd-api-design"}},
	{ID: "pr-capstone", Type: ResourceProject, Title: "综合项目：带持久化的 REST 服务", Phase: 3, Difficulty: 5, EstimatedHours: 16,
		SkillKeys: []string{"api_design", "schema_design", "unit_testing", "modularity", "orm_usage"},
		Prerequisites: []string{"rd-api-design", "rd-testing", "rd-txn"}},
	{ID: "ms-advanced", Type: ResourceMilestone, Title: "里程碑：进阶关卡", Phase: 3, Difficulty: 5, EstimatedHours: 1,
		SkillKeys: []string{"tradeoff_analysis", "code_review", "ci_basics", "documentation", "build_systems", "os_fundamentals", "heaps", "string_algorithms"},
		Prerequisites: []string{"pr-capstone", "ex-testing"}},
}

// Default 返回内建目录；制作错误直接 panic，属于部署级故障
func Default() *Catalog {
	c, err := New("2025.1", defaultDimensions, defaultSkills, defaultSteps, defaultResources)
	if err != nil {
		panic(err)
	}
	return c
}
