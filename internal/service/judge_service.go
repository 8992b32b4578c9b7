package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"skillpath_backend/internal/catalog"
	"skillpath_backend/internal/config"
	"strings"
	"time"
)

// Judge0 语言 ID 对照，只列出题库实际用到的语言
var judgeLanguageIDs = map[string]int{
	"c":          50,
	"cpp":        54,
	"go":         60,
	"javascript": 63,
	"python":     71,
}

// TestCaseResult 单个测试用例的沙箱执行结果
type TestCaseResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Stdout string `json:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty"`
}

type JudgeService struct {
	config config.Judge0Config
	client *http.Client
}

func NewJudgeService(cfg config.Judge0Config) *JudgeService {
	return &JudgeService{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type judgeSubmission struct {
	SourceCode     string `json:"source_code"`
	LanguageID     int    `json:"language_id"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
}

type judgeResult struct {
	Status struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compile_output"`
}

// RunTestCases 把学生代码连同每个测试用例的输入提交到 Judge0，
// 用 wait=true 同步等待结果。Status 3 = Accepted。
func (s *JudgeService) RunTestCases(language string, code string, cases []catalog.TestCase) ([]TestCaseResult, error) {
	langID, ok := judgeLanguageIDs[language]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", language)
	}

	results := make([]TestCaseResult, 0, len(cases))
	for _, tc := range cases {
		res, err := s.submit(judgeSubmission{
			SourceCode:     code,
			LanguageID:     langID,
			Stdin:          tc.Input,
			ExpectedOutput: tc.Expected,
		})
		if err != nil {
			return nil, err
		}

		stderr := res.Stderr
		if stderr == "" && res.CompileOutput != "" {
			stderr = res.CompileOutput
		}
		results = append(results, TestCaseResult{
			Name:   tc.Name,
			Passed: res.Status.ID == 3,
			Stdout: strings.TrimRight(res.Stdout, "\n"),
			Stderr: stderr,
		})
	}
	return results, nil
}

func (s *JudgeService) submit(sub judgeSubmission) (*judgeResult, error) {
	jsonData, err := json.Marshal(sub)
	if err != nil {
		return nil, err
	}

	url := s.config.URL + "/submissions?base64_encoded=false&wait=true"
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if s.config.APIKey != "" {
		req.Header.Set("X-RapidAPI-Key", s.config.APIKey)
	}
	if s.config.Host != "" {
		req.Header.Set("X-RapidAPI-Host", s.config.Host)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("judge0 error (status %d): %s", resp.StatusCode, string(body))
	}

	var result judgeResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
