// Package richtext 实现标签使用的富文本模型与链接属性归一化。
//
// Text 由一段文字和若干不重叠、完整覆盖文字的属性 run 组成，下标以 rune 计。
// 属性键是封闭枚举 Key，链接值为 *url.URL 或 string，在点击检测时才解析。
package richtext
