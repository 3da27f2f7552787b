package wecom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenCacheKey = "wecom:access_token"

// Client 企业微信网关客户端
// access_token 先走redis缓存，miss时加锁刷新，避免并发重复取token
type Client struct {
	gatewayURL string // 内网网关地址，如 http://10.1.3.65:8080/gateway/qywx
	corpID     string
	corpSecret string
	agentID    int
	rdb        *redis.Client
	httpClient *http.Client
	mu         sync.Mutex
}

func NewClient(gatewayURL, corpID, corpSecret string, agentID int, rdb *redis.Client) *Client {
	return &Client{
		gatewayURL: gatewayURL,
		corpID:     corpID,
		corpSecret: corpSecret,
		agentID:    agentID,
		rdb:        rdb,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AgentID 当前应用ID
func (c *Client) AgentID() int {
	return c.agentID
}

// GetAccessToken 获取access_token
// 提前60秒过期，网关侧的token有效期以返回的expires_in为准
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	if token, err := c.rdb.Get(ctx, tokenCacheKey).Result(); err == nil && token != "" {
		return token, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// 双重检查：锁等待期间其他请求可能已刷新
	if token, err := c.rdb.Get(ctx, tokenCacheKey).Result(); err == nil && token != "" {
		return token, nil
	}

	reqURL := fmt.Sprintf("%s/cgi-bin/gettoken?corpid=%s&corpsecret=%s",
		c.gatewayURL, url.QueryEscape(c.corpID), url.QueryEscape(c.corpSecret))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("创建token请求失败: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("请求企业微信token失败: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		ErrCode     int    `json:"errcode"`
		ErrMsg      string `json:"errmsg"`
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("解析token响应失败: %w", err)
	}
	if result.ErrCode != 0 {
		return "", fmt.Errorf("企业微信token错误[%d]: %s", result.ErrCode, result.ErrMsg)
	}

	expire := time.Duration(result.ExpiresIn-60) * time.Second
	if expire <= 0 {
		expire = time.Minute
	}
	c.rdb.Set(ctx, tokenCacheKey, result.AccessToken, expire)

	return result.AccessToken, nil
}

// SendMessageResponse 消息发送响应
type SendMessageResponse struct {
	ErrCode     int    `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
	InvalidUser string `json:"invaliduser,omitempty"`
	MsgID       string `json:"msgid,omitempty"`
}

type textMessage struct {
	ToUser  string `json:"touser"`
	MsgType string `json:"msgtype"`
	AgentID int    `json:"agentid"`
	Text    struct {
		Content string `json:"content"`
	} `json:"text"`
	Safe int `json:"safe"`
}

// SendText 发送文本消息给指定成员（工号）
func (c *Client) SendText(ctx context.Context, toUser, content string) (*SendMessageResponse, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取访问令牌失败: %w", err)
	}

	msg := textMessage{
		ToUser:  toUser,
		MsgType: "text",
		AgentID: c.agentID,
	}
	msg.Text.Content = content

	bodyBytes, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("序列化消息体失败: %w", err)
	}

	reqURL := fmt.Sprintf("%s/cgi-bin/message/send?access_token=%s", c.gatewayURL, url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("创建消息请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求企业微信消息接口失败: %w", err)
	}
	defer resp.Body.Close()

	var result SendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("解析消息响应失败: %w", err)
	}
	if result.ErrCode != 0 {
		return nil, fmt.Errorf("发送企业微信消息失败: %s", result.ErrMsg)
	}

	return &result, nil
}
