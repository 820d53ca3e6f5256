// 写入演示投诉数据
//
// 仅在存储为空时写入，已有数据时需要加 -force 才会追加。
// 用于本地开发和演示环境首次部署。
//
// 用法: go run scripts/seed_complaints.go [-config configs] [-force]

package main

import (
	"context"
	"flag"
	"log"
	"time"

	"scms_backend/internal/app"
	"scms_backend/internal/config"
	"scms_backend/internal/service"
	"scms_backend/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	configDir := flag.String("config", "configs", "配置文件目录")
	force := flag.Bool("force", false, "已有数据时仍然写入")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}
	logger.InitConsole(cfg.Server.Mode == "debug")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := app.OpenOfflineStore(ctx, cfg)
	if err != nil {
		log.Fatalf("打开投诉存储失败: %v", err)
	}
	defer store.Close()

	if n := store.Complaints.Count(); n > 0 && !*force {
		log.Printf("存储中已有 %d 条投诉，跳过（使用 -force 追加）", n)
		return
	}

	svc := store.Complaints
	added := 0
	for _, c := range service.DemoComplaints(svc.Now(), svc.Directory(), svc.IDs()) {
		if err := svc.Add(c); err != nil {
			log.Printf("跳过 %s: %v", c.ID, err)
			continue
		}
		added++
	}

	if err := store.Flush(ctx); err != nil {
		log.Fatalf("保存失败: %v", err)
	}
	log.Printf("完成！写入 %d 条演示投诉", added)
}
