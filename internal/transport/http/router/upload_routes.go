package router

import (
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"b2b-market-api/internal/domain"
	httpez "b2b-market-api/internal/transport/http/ez"
	mdw "b2b-market-api/internal/transport/http/middleware"
	"b2b-market-api/pkg/utils"
)

func init() { Register(uploadModule{}) }

type uploadModule struct{}

func (uploadModule) Priority() int { return 50 }

// MountAPI 商品图片上传：落盘后仅把路径字符串交还调用方，
// 由商品创建/更新接口把路径写进 images。
func (uploadModule) MountAPI(api *gin.RouterGroup, d *Deps) {
	seller := api.Group("")
	seller.Use(mdw.AuthJWT(d.JWT, d.DB, domain.RoleSeller))
	ez := httpez.New(seller)

	httpez.POSTFILES(ez, "/uploads", "images", d.Upload.MaxFiles, func(c *gin.Context, files []*multipart.FileHeader) (any, error) {
		if err := os.MkdirAll(d.Upload.Dir, 0o755); err != nil {
			return nil, httpez.Internal("prepare upload dir failed", err)
		}

		maxSize := int64(d.Upload.MaxSizeMB) << 20
		paths := make([]string, 0, len(files))
		for _, f := range files {
			if maxSize > 0 && f.Size > maxSize {
				return nil, httpez.BadRequest("file too large: " + f.Filename)
			}
			ext := strings.ToLower(filepath.Ext(f.Filename))
			switch ext {
			case ".jpg", ".jpeg", ".png", ".webp":
			default:
				return nil, httpez.BadRequest("unsupported file type: " + f.Filename)
			}
			name := utils.NewID() + ext
			if err := c.SaveUploadedFile(f, filepath.Join(d.Upload.Dir, name)); err != nil {
				return nil, httpez.Internal("save file failed", err)
			}
			paths = append(paths, "/uploads/"+name)
		}
		return gin.H{"paths": paths}, nil
	})
}
