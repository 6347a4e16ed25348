package prompts

// StairRegulationSystemPrompt frames the model as a building-code analyst.
const StairRegulationSystemPrompt = "你是建筑规范分析专家，擅长从规范文本中提取结构化数据。"

// StairRegulationPrompt asks for the stair limits of a regulation as one
// JSON object. The model must convert every value to meters and use null
// for rules it cannot find.
var StairRegulationPrompt = NewPromptTemplate(
	`你是一个专业的建筑规范分析专家。请从以下建筑规范文本中提取楼梯相关的数值限制。

规范文本：
{{.text}}

请提取以下信息，并以JSON格式返回：

**基本信息**：
1. **regulation_name**: 规范的完整标题名称（如"住宅建筑规范"、"建筑设计防火规范"等，只提取主标题，不要提取条文内容）
2. **regulation_code**: 规范编号（如"GB 50368-2005"、"JGJ 242-2011"等）

**楼梯规则**：
1. **踏步高度 (riser_height)**：最大值限制
2. **踏步宽度/深度 (tread_depth)**：最小值限制
3. **2R+G公式 (two_r_plus_g)**：最小值和最大值范围
4. **平台长度 (landing_length)**：最小值限制

对于每个规则，请提供：
- min_value: 最小值（如果有）
- max_value: 最大值（如果有）
- unit: 单位（统一转换为米 "m"）
- source: 规范来源（章节号，如"第6.3.2条"）
- full_text: 完整的规范条文

**重要提示**：
- regulation_name必须是规范文档的主标题，不要提取条文的一部分
- 所有数值统一转换为米（m）为单位。例如：170mm = 0.17m, 260mm = 0.26m
- 如果某个规则在文本中没有找到，设置为null
- 确保提取的数值准确无误
- source字段只写章节号，不要包含规范名称

返回JSON格式：
{
  "regulation_name": "住宅建筑规范",
  "regulation_code": "GB 50368-2005",
  "riser_height": {
    "max_value": 0.175,
    "unit": "m",
    "source": "第6.3.2条",
    "full_text": "楼梯踏步高度不应大于0.175m"
  },
  "tread_depth": {
    "min_value": 0.26,
    "unit": "m",
    "source": "第6.3.2条",
    "full_text": "踏步宽度不应小于0.26m"
  },
  "two_r_plus_g": {
    "min_value": 0.54,
    "max_value": 0.62,
    "unit": "m",
    "source": "经验公式",
    "full_text": "2R+G应在540~620mm之间"
  },
  "landing_length": {
    "min_value": 1.2,
    "unit": "m",
    "source": "平台要求",
    "full_text": "中间平台宽度不应小于1.20m"
  }
}

只返回JSON，不要添加其他说明文字。`)
