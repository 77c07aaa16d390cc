package service

import (
	"fmt"
	"strings"

	"lawlens-backend/models"
)

// historyLimit keeps only the most recent turns so the system instruction is
// not diluted by stale conversation.
const historyLimit = 3

const baseRole = `你是一名拥有 20 年经验的中国红圈律所高级合伙人，专精于民商事诉讼文书。
你的文书风格必须：结构严谨、逻辑缜密、用词极其专业（法言法语）。`

const formatInstruction = `【重要格式要求】
前端使用富文本编辑器，请直接输出 HTML 格式的代码，不要使用 Markdown。
1. 使用 <p> 包裹段落。
2. 使用 <b> 或 <strong> 加粗重要的小标题（如"事实与理由"、"诉讼请求"）。
3. 使用 <br> 进行换行。
4. 严禁使用 ` + "```html" + ` 代码块包裹，直接输出内容即可。`

// corpusFallback is used when retrieval yields nothing: the generator must
// lean on general doctrine instead of fabricating citations.
const corpusFallback = `（未检索到特定库内案例，请严格依据《中华人民共和国民法典》及相关司法解释，不得虚构法律条文）`

// Compose assembles the system instruction and trimmed message list for one
// request. It is a pure function of its inputs: identical request and context
// values always produce an identical prompt.
func Compose(req models.AnalyzeRequest, corpus []models.RetrievedContext, memory string) models.ComposedPrompt {
	switch req.Mode {
	case models.ModePolish:
		return composePolish(req, corpus, memory)
	case models.ModeSelectionPolish:
		return composeSelectionPolish(req, memory)
	case models.ModeChatDoc:
		return composeChatDoc(req)
	case models.ModeRiskScore:
		return composeRiskScore(req)
	default:
		return composeDraft(req, corpus, memory)
	}
}

func composeDraft(req models.AnalyzeRequest, corpus []models.RetrievedContext, memory string) models.ComposedPrompt {
	system := fmt.Sprintf(`%s

【任务目标】
根据用户提供的案情描述，从零起草一份结构严谨、攻防兼备的法律文书。请先用一小段 <p> 说明起草思路，再输出完整文书。

【起草标准】
1. **结构完备**：必须包含首部（原被告信息）、诉讼请求、事实与理由、尾部（致谢、具状人、日期）四大板块。
2. **事实陈述**：采用"时间轴+法律事实"的叙述方式，冷静、客观、有力。
3. **法律适用**：必须在"理由"部分显式引用下方的【权威法律依据库】。引用格式为："根据《XX法》第XX条之规定..."。
4. **HTML排版**：小标题（如【诉讼请求】）与关键金额请使用 <b> 加粗。

%s%s%s`,
		baseRole,
		memoryBlock(memory),
		formatInstruction+"\n\n",
		corpusBlock(corpus),
	)

	return models.ComposedPrompt{
		SystemInstruction: system,
		Messages:          trimHistory(req.Messages),
	}
}

func composePolish(req models.AnalyzeRequest, corpus []models.RetrievedContext, memory string) models.ComposedPrompt {
	system := fmt.Sprintf(`%s

【任务目标】
对用户提供的法律文书初稿进行专业级润色。请先用一小段 <p> 给出审阅意见，再输出修改后的完整文书。

【原始文档内容】
'''
%s
'''

【修改要求】
1. **术语专业化**：将口语表达转化为标准法言法语（例如：将"想要钱"改为"诉请支付"；将"说话不算数"改为"构成根本违约"）。
2. **逻辑严密性**：检查因果关系，使用"鉴于..."、"综上所述..."等连接词增强逻辑链。
3. **引用规范化**：参考下方的【权威法律依据库】，对文中的法条引用进行核对或补充。
4. **HTML排版**：重点内容（如金额、关键法条）请使用 <b> 加粗。

%s%s%s`,
		baseRole,
		req.CurrentDoc,
		memoryBlock(memory),
		formatInstruction+"\n\n",
		corpusBlock(corpus),
	)

	return models.ComposedPrompt{
		SystemInstruction: system,
		Messages:          trimHistory(req.Messages),
	}
}

// composeSelectionPolish builds a single synthesized instruction. Prior
// conversation is intentionally discarded: a micro-edit must not be steered by
// unrelated earlier turns, so the message list is exactly one user entry.
func composeSelectionPolish(req models.AnalyzeRequest, memory string) models.ComposedPrompt {
	system := fmt.Sprintf(`%s

【任务目标】
用户在编辑器中选中了一段文字，要求进行局部润色。

【输出约束】
1. 只输出替换选中内容的文字本身，不要任何前言、解释或引号包裹。
2. 保持与原文一致的语体和时态，仅提升专业性与严谨性。
3. 不得扩写成完整文书，篇幅与原选中内容相当。

%s`,
		baseRole,
		memoryBlock(memory),
	)

	userMsg := fmt.Sprintf("请润色以下选中内容：\n%s", req.Selection)

	return models.ComposedPrompt{
		SystemInstruction: system,
		Messages:          []models.ChatMessage{{Role: models.RoleUser, Content: userMsg}},
	}
}

func composeChatDoc(req models.AnalyzeRequest) models.ComposedPrompt {
	system := fmt.Sprintf(`%s

【任务目标】
回答用户针对当前文档提出的问题。

【当前文档内容】
'''
%s
'''

【回答约束】
1. 回答必须严格依据上方【当前文档内容】，逐条对应文档原文。
2. 文档中没有的事实，必须明确回答"文档中未提及"，严禁编造或推测。
3. 回答使用 HTML 段落（<p>），重点结论用 <b> 加粗。`,
		baseRole,
		req.CurrentDoc,
	)

	return models.ComposedPrompt{
		SystemInstruction: system,
		Messages:          trimHistory(req.Messages),
	}
}

func composeRiskScore(req models.AnalyzeRequest) models.ComposedPrompt {
	system := baseRole + `

【任务目标】
对下方合同/文书进行风险评估，从多个维度打分。

【输出约束】
只输出一个 JSON 对象，不要任何其他文字、解释或 Markdown 代码块。结构如下：
{"total_score": 0-100 的整数, "summary": "一句话综合评价", "dimensions": [{"subject": "维度名称", "score": 0-100 的整数, "full_mark": 100}, ...]}
维度建议涵盖：主体资格、权利义务、违约责任、争议解决、合规性。`

	content := req.CurrentDoc
	if content == "" && len(req.Messages) > 0 {
		content = req.Messages[len(req.Messages)-1].Content
	}

	userMsg := fmt.Sprintf("请评估以下文书的法律风险：\n%s", content)

	return models.ComposedPrompt{
		SystemInstruction: system,
		Messages:          []models.ChatMessage{{Role: models.RoleUser, Content: userMsg}},
	}
}

// memoryBlock renders remembered user preferences as a must-honor directive.
// It is ranked above the corpus block: on conflict, a user's remembered
// instruction beats generic retrieved material.
func memoryBlock(memory string) string {
	if memory == "" {
		return ""
	}
	return fmt.Sprintf(`【用户偏好（必须遵守，优先级高于法律依据库）】
%s

`, memory)
}

// corpusBlock renders retrieved context for citation, or the explicit
// fallback sentence when retrieval came back empty.
func corpusBlock(corpus []models.RetrievedContext) string {
	if len(corpus) == 0 {
		return corpusFallback
	}

	var builder strings.Builder
	builder.WriteString("【权威法律依据库（必须优先引用）】\n")
	for i, doc := range corpus {
		fmt.Fprintf(&builder, "依据%d:《%s》\n条款内容:%s\n", i+1, doc.SourceLabel, doc.Snippet)
	}
	return builder.String()
}

// trimHistory keeps the most recent historyLimit messages and strips any
// system messages carried over from earlier turns: the composed system
// instruction is always the only system entry, and always first.
func trimHistory(messages []models.ChatMessage) []models.ChatMessage {
	filtered := make([]models.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == models.RoleSystem {
			continue
		}
		filtered = append(filtered, m)
	}
	if len(filtered) > historyLimit {
		filtered = filtered[len(filtered)-historyLimit:]
	}
	return filtered
}
