package catalog

// 27 步入学测评向导的静态定义。步骤顺序即 SequenceIndex，必须连续。

var abOptions = []Option{{Key: "a", Label: "选项 A"}, {Key: "b", Label: "选项 B"}}

func mcqOptions(labels ...string) []Option {
	keys := []string{"a", "b", "c", "d"}
	opts := make([]Option, len(labels))
	for i, l := range labels {
		opts[i] = Option{Key: keys[i], Label: l}
	}
	return opts
}

var defaultSteps = []StepConfig{
	{
		ID: "bg-experience", SequenceIndex: 0, Kind: KindQuestionnaire,
		Title: "编程背景自评", Prompt: "请按 1（完全陌生）到 5（非常熟练）评估自己", Difficulty: 1, Scale: 5,
		SkillKeys: []string{"variables_types", "control_flow", "functions"},
		Questionnaire: []QuestionnaireItem{
			{ID: "q-vars", Prompt: "声明变量、理解基本类型", SkillKey: "variables_types"},
			{ID: "q-flow", Prompt: "使用条件判断与循环", SkillKey: "control_flow"},
			{ID: "q-func", Prompt: "抽取函数并传递参数", SkillKey: "functions"},
		},
	},
	{
		ID: "bg-tooling", SequenceIndex: 1, Kind: KindQuestionnaire,
		Title: "工具链自评", Prompt: "请按 1 到 5 评估自己的日常工程习惯", Difficulty: 1, Scale: 5,
		SkillKeys: []string{"version_control", "shell_basics", "dependency_management"},
		Questionnaire: []QuestionnaireItem{
			{ID: "q-git", Prompt: "使用 Git 提交、分支与合并", SkillKey: "version_control"},
			{ID: "q-shell", Prompt: "在命令行中完成日常操作", SkillKey: "shell_basics"},
			{ID: "q-deps", Prompt: "管理项目依赖与版本", SkillKey: "dependency_management"},
		},
	},
	{
		ID: "mcq-types", SequenceIndex: 2, Kind: KindMCQ,
		Title: "类型与求值", Prompt: "表达式 7 / 2 在整数除法语义下的结果是？", Difficulty: 1,
		SkillKeys: []string{"variables_types", "numeric_literacy"},
		Options:   mcqOptions("3.5", "3", "4", "未定义"), CorrectOption: "b",
	},
	{
		ID: "mcq-scope", SequenceIndex: 3, Kind: KindMCQ,
		Title: "作用域", Prompt: "在函数内部对外层变量同名重新声明后，外层变量会？", Difficulty: 2,
		SkillKeys: []string{"functions", "memory_model"},
		Options:   mcqOptions("被覆盖", "保持不变（被遮蔽）", "编译错误", "运行时错误"), CorrectOption: "b",
	},
	{
		ID: "mcq-hashmap", SequenceIndex: 4, Kind: KindMCQ,
		Title: "哈希表", Prompt: "哈希表查找的平均时间复杂度是？", Difficulty: 2,
		SkillKeys: []string{"hash_maps", "complexity_analysis"},
		Options:   mcqOptions("O(1)", "O(log n)", "O(n)", "O(n log n)"), CorrectOption: "a",
	},
	{
		ID: "mcq-stack", SequenceIndex: 5, Kind: KindMCQ,
		Title: "栈与队列", Prompt: "函数调用栈溢出最常见的直接原因是？", Difficulty: 2,
		SkillKeys: []string{"stacks_queues", "recursion"},
		Options:   mcqOptions("循环次数过多", "无终止条件的递归", "数组越界", "内存泄漏"), CorrectOption: "b",
	},
	{
		ID: "mcq-tree", SequenceIndex: 6, Kind: KindMCQ,
		Title: "树结构", Prompt: "平衡二叉搜索树的查找复杂度是？", Difficulty: 3,
		SkillKeys: []string{"trees", "complexity_analysis"},
		Options:   mcqOptions("O(1)", "O(log n)", "O(n)", "O(n²)"), CorrectOption: "b",
	},
	{
		ID: "burst-syntax", SequenceIndex: 7, Kind: KindMicroMCQBurst,
		Title: "基础速答", Prompt: "快速作答以下小题", Difficulty: 2,
		SkillKeys: []string{"control_flow", "string_processing", "arrays_slices"},
		Items: []BurstItem{
			{ID: "b1", Prompt: "for 循环中 break 的作用是？", Options: mcqOptions("跳过本次迭代", "终止整个循环", "重新开始循环"), Correct: "b"},
			{ID: "b2", Prompt: "字符串拼接在循环中反复进行的主要代价是？", Options: mcqOptions("可读性", "重复分配与拷贝", "线程安全"), Correct: "b"},
			{ID: "b3", Prompt: "访问长度为 n 的数组下标 n 会？", Options: mcqOptions("返回零值", "越界", "自动扩容"), Correct: "b"},
			{ID: "b4", Prompt: "continue 的作用是？", Options: mcqOptions("跳过本次迭代", "终止循环", "返回函数"), Correct: "a"},
		},
	},
	{
		ID: "mcq-binary-search", SequenceIndex: 8, Kind: KindMCQ,
		Title: "二分查找", Prompt: "二分查找要求输入序列满足什么前提？", Difficulty: 2,
		SkillKeys: []string{"searching"},
		Options:   mcqOptions("无重复元素", "已排序", "长度为 2 的幂", "元素为整数"), CorrectOption: "b",
	},
	{
		ID: "mcq-sorting", SequenceIndex: 9, Kind: KindMCQ,
		Title: "排序", Prompt: "以下哪种排序在最坏情况下仍是 O(n log n)？", Difficulty: 3,
		SkillKeys: []string{"sorting", "complexity_analysis"},
		Options:   mcqOptions("快速排序", "归并排序", "插入排序", "冒泡排序"), CorrectOption: "b",
	},
	{
		ID: "mcq-graph", SequenceIndex: 10, Kind: KindMCQ,
		Title: "图遍历", Prompt: "在无权图中求两点最短路径应使用？", Difficulty: 3,
		SkillKeys: []string{"graphs", "graph_traversal"},
		Options:   mcqOptions("深度优先搜索", "广度优先搜索", "拓扑排序", "并查集"), CorrectOption: "b",
	},
	{
		ID: "text-complexity", SequenceIndex: 11, Kind: KindShortText,
		Title: "复杂度解释", Prompt: "用自己的话解释：为什么嵌套遍历同一列表通常是 O(n²)？什么场景可以降到 O(n)？", Difficulty: 3,
		SkillKeys: []string{"complexity_analysis", "ds_selection"},
		Rubric:    "满分要点：嵌套循环每层 n 次导致 n*n；借助哈希表以空间换时间可单次遍历；提到均摊或哈希冲突的边界可加分。",
	},
	{
		ID: "code-fizzbuzz", SequenceIndex: 12, Kind: KindCode,
		Title: "基础编码", Prompt: "读入整数 n，输出 1..n，3 的倍数输出 Fizz，5 的倍数输出 Buzz，同时满足输出 FizzBuzz。", Difficulty: 2,
		SkillKeys: []string{"control_flow", "io_basics"},
		Language:  "c", StarterCode: "#include <stdio.h>\n\nint main(void) {\n    // TODO\n    return 0;\n}\n",
		TestCases: []TestCase{
			{Name: "small", Input: "3\n", Expected: "1\n2\nFizz\n", Weight: 1},
			{Name: "five", Input: "5\n", Expected: "1\n2\nFizz\n4\nBuzz\n", Weight: 1},
			{Name: "fifteen", Input: "15\n", Expected: "1\n2\nFizz\n4\nBuzz\nFizz\n7\n8\nFizz\nBuzz\n11\nFizz\n13\n14\nFizzBuzz\n", Weight: 1, Hidden: true},
			{Name: "one", Input: "1\n", Expected: "1\n", Weight: 1, Hidden: true},
		},
	},
	{
		ID: "mcq-sql", SequenceIndex: 13, Kind: KindMCQ,
		Title: "SQL 基础", Prompt: "筛选分组后的聚合结果应使用哪个子句？", Difficulty: 2,
		SkillKeys: []string{"sql_queries", "joins_aggregation"},
		Options:   mcqOptions("WHERE", "HAVING", "ORDER BY", "LIMIT"), CorrectOption: "b",
	},
	{
		ID: "burst-sql", SequenceIndex: 14, Kind: KindMicroMCQBurst,
		Title: "数据库速答", Prompt: "快速作答以下小题", Difficulty: 3,
		SkillKeys: []string{"indexing", "transactions", "normalization"},
		Items: []BurstItem{
			{ID: "s1", Prompt: "给高选择性的查询列加索引主要改善？", Options: mcqOptions("写入速度", "读取速度", "存储占用"), Correct: "b"},
			{ID: "s2", Prompt: "事务的 A 指的是？", Options: mcqOptions("原子性", "可用性", "审计性"), Correct: "a"},
			{ID: "s3", Prompt: "第三范式主要消除？", Options: mcqOptions("重复行", "传递依赖", "外键"), Correct: "b"},
		},
	},
	{
		ID: "text-schema", SequenceIndex: 15, Kind: KindShortText,
		Title: "模式设计", Prompt: "一张订单表里直接冗余了用户姓名与地址。说明这样做的利弊，以及何时应当拆表。", Difficulty: 3,
		SkillKeys: []string{"schema_design", "normalization", "tradeoff_analysis"},
		Rubric:    "满分要点：冗余换查询性能但有更新异常；拆表保证一致性但引入连接成本；提到读写比例或历史快照语义可加分。",
	},
	{
		ID: "cmp-schema", SequenceIndex: 16, Kind: KindDesignComparison,
		Title: "模式对比", Prompt: "存储用户多个收货地址：A) users 表加 address1/address2/address3 列；B) 独立 addresses 表外键关联 users。哪个更合理？", Difficulty: 2,
		SkillKeys: []string{"schema_design", "data_modeling"},
		Options:   abOptions, CorrectOption: "b",
	},
	{
		ID: "mcq-http", SequenceIndex: 17, Kind: KindMCQ,
		Title: "HTTP 语义", Prompt: "幂等且用于整体替换资源的 HTTP 方法是？", Difficulty: 3,
		SkillKeys: []string{"http_protocol", "api_design"},
		Options:   mcqOptions("POST", "PUT", "PATCH", "GET"), CorrectOption: "b",
	},
	{
		ID: "code-dedupe", SequenceIndex: 18, Kind: KindCode,
		Title: "进阶编码", Prompt: "读入一行以空格分隔的整数，按首次出现顺序去重后输出，以空格分隔。", Difficulty: 3,
		SkillKeys: []string{"hash_maps", "arrays_slices", "ds_selection"},
		Language:  "c", StarterCode: "#include <stdio.h>\n\nint main(void) {\n    // TODO\n    return 0;\n}\n",
		TestCases: []TestCase{
			{Name: "basic", Input: "1 2 2 3 1\n", Expected: "1 2 3\n", Weight: 2},
			{Name: "single", Input: "7\n", Expected: "7\n", Weight: 1},
			{Name: "all-same", Input: "4 4 4 4\n", Expected: "4\n", Weight: 1, Hidden: true},
			{Name: "negatives", Input: "-1 0 -1 2\n", Expected: "-1 0 2\n", Weight: 2, Hidden: true},
		},
	},
	{
		ID: "crit-api", SequenceIndex: 19, Kind: KindDesignCritique,
		Title: "API 评审", Prompt: "评审这个接口：GET /api/deleteUser?id=5，成功与失败都返回 200，错误信息放在 body 的 msg 字段。指出问题并给出改进。", Difficulty: 3,
		SkillKeys: []string{"api_design", "error_contract", "http_protocol"},
		Rubric:    "满分要点：GET 不应有副作用（应为 DELETE）；动词不应出现在路径中；应使用语义化状态码而非恒 200；错误结构应稳定可机读。每个要点各占 25%。",
	},
	{
		ID: "mcq-unit", SequenceIndex: 20, Kind: KindMCQ,
		Title: "单元测试", Prompt: "一个好的单元测试失败时应当？", Difficulty: 2,
		SkillKeys: []string{"unit_testing", "test_design"},
		Options:   mcqOptions("重跑三次取多数", "明确指向被破坏的行为", "自动跳过", "只在 CI 中失败"), CorrectOption: "b",
	},
	{
		ID: "burst-testing", SequenceIndex: 21, Kind: KindMicroMCQBurst,
		Title: "测试速答", Prompt: "快速作答以下小题", Difficulty: 3,
		SkillKeys: []string{"mocking", "edge_cases", "regression_testing"},
		Items: []BurstItem{
			{ID: "t1", Prompt: "对外部 HTTP 依赖做单元测试通常使用？", Options: mcqOptions("真实服务", "测试替身", "手工验证"), Correct: "b"},
			{ID: "t2", Prompt: "空输入、最大值、重复值属于？", Options: mcqOptions("冒烟用例", "边界用例", "性能用例"), Correct: "b"},
			{ID: "t3", Prompt: "修复 bug 后补一个还原该 bug 的用例称为？", Options: mcqOptions("回归测试", "集成测试", "验收测试"), Correct: "a"},
		},
	},
	{
		ID: "text-debugging", SequenceIndex: 22, Kind: KindShortText,
		Title: "调试方法", Prompt: "线上接口偶发返回错误数据但本地无法复现。描述你的排查步骤与依据。", Difficulty: 4,
		SkillKeys: []string{"debugging", "assertions_invariants", "race_conditions"},
		Rubric:    "满分要点：先收集证据（日志/请求样本/时间规律）再假设；考虑并发与共享状态；缩小变量二分定位；提到加不变量断言或灰度验证可加分。",
	},
	{
		ID: "cmp-concurrency", SequenceIndex: 23, Kind: KindDesignComparison,
		Title: "并发对比", Prompt: "多请求累加同一计数器：A) 无锁直接自增；B) 互斥锁或原子操作保护。哪个正确？", Difficulty: 3,
		SkillKeys: []string{"race_conditions", "concurrency_primitives"},
		Options:   abOptions, CorrectOption: "b",
	},
	{
		ID: "code-wordfreq", SequenceIndex: 24, Kind: KindCode,
		Title: "综合编码", Prompt: "读入一行小写单词（空格分隔），输出出现次数最多的单词；并列时输出最先出现者。", Difficulty: 4,
		SkillKeys: []string{"hash_maps", "string_processing", "ds_selection"},
		Language:  "c", StarterCode: "#include <stdio.h>\n\nint main(void) {\n    // TODO\n    return 0;\n}\n",
		PassThreshold: 0.75,
		TestCases: []TestCase{
			{Name: "basic", Input: "a b a c a\n", Expected: "a\n", Weight: 1},
			{Name: "tie", Input: "x y x y\n", Expected: "x\n", Weight: 2},
			{Name: "single", Input: "hello\n", Expected: "hello\n", Weight: 1, Hidden: true},
			{Name: "long", Input: "aa bb aa bb cc aa\n", Expected: "aa\n", Weight: 2, Hidden: true},
		},
	},
	{
		ID: "crit-architecture", SequenceIndex: 25, Kind: KindDesignCritique,
		Title: "架构评审", Prompt: "评审：一个服务把业务逻辑、SQL 拼接和 HTTP 处理都写在同一个 800 行的处理函数里。指出风险并给出分层建议。", Difficulty: 4,
		SkillKeys: []string{"modularity", "refactoring", "readability"},
		Rubric:    "满分要点：职责不单一导致不可测试；SQL 拼接的注入与复用问题；建议 handler/service/repository 分层；提到渐进式重构与测试保护可加分。",
	},
	{
		ID: "wrap-up", SequenceIndex: 26, Kind: KindSummary,
		Title: "完成确认", Prompt: "测评到此结束，提交后将生成你的能力画像与学习路线。", Difficulty: 1,
		SkillKeys: nil,
	},
}
